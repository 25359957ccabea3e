package types

import (
	"encoding/json"
	"fmt"
)

// ThresholdPayload is the decoded form of InterpretationRule.Threshold.
// The populated fields depend on the comparator: a single number for the
// ordered comparators, min/max for between, values for in, and value for
// eq/neq (which may also hold a string).
type ThresholdPayload struct {
	Value  *json.RawMessage  `json:"value,omitempty"`
	Min    *float64          `json:"min,omitempty"`
	Max    *float64          `json:"max,omitempty"`
	Values []json.RawMessage `json:"values,omitempty"`
}

func DecodeThreshold(raw []byte) (*ThresholdPayload, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty threshold payload")
	}
	var tp ThresholdPayload
	if err := json.Unmarshal(raw, &tp); err != nil {
		return nil, fmt.Errorf("decode threshold: %w", err)
	}
	return &tp, nil
}

// ValueNumber returns the single numeric threshold, if present.
func (tp *ThresholdPayload) ValueNumber() (float64, bool) {
	if tp == nil || tp.Value == nil {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(*tp.Value, &f); err != nil {
		return 0, false
	}
	return f, true
}

// ValueString returns the single threshold as a string, if present. Numbers
// are rendered in their JSON form so eq/neq can fall back to text equality.
func (tp *ThresholdPayload) ValueString() (string, bool) {
	if tp == nil || tp.Value == nil {
		return "", false
	}
	var s string
	if err := json.Unmarshal(*tp.Value, &s); err == nil {
		return s, true
	}
	var f float64
	if err := json.Unmarshal(*tp.Value, &f); err == nil {
		return string(*tp.Value), true
	}
	return "", false
}

// Range returns the inclusive [min, max] bounds for between.
func (tp *ThresholdPayload) Range() (float64, float64, bool) {
	if tp == nil || tp.Min == nil || tp.Max == nil {
		return 0, 0, false
	}
	return *tp.Min, *tp.Max, true
}

// List returns the enumerated values for in, each as its text form:
// strings unquoted, numbers as written.
func (tp *ThresholdPayload) List() ([]string, bool) {
	if tp == nil || len(tp.Values) == 0 {
		return nil, false
	}
	out := make([]string, 0, len(tp.Values))
	for _, v := range tp.Values {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, string(v))
	}
	return out, true
}
