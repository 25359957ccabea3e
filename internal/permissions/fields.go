// Package permissions holds the declarative field-level edit policy for
// samples. The policy is a static lookup table: no I/O, no side effects.
package permissions

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed fieldpolicy.yaml
var fieldPolicyYAML []byte

type fieldPolicy struct {
	Blocked               []string `yaml:"blocked"`
	EditableWhenValidated []string `yaml:"editable_when_validated"`
}

var (
	policyOnce      sync.Once
	blockedFields   map[string]struct{}
	validatedFields map[string]struct{}
)

func loadPolicy() {
	policyOnce.Do(func() {
		var p fieldPolicy
		if err := yaml.Unmarshal(fieldPolicyYAML, &p); err != nil {
			// The policy ships inside the binary; failing to parse it is a
			// build defect, not a runtime condition.
			panic(fmt.Sprintf("permissions: bad embedded field policy: %v", err))
		}
		blockedFields = make(map[string]struct{}, len(p.Blocked))
		for _, f := range p.Blocked {
			blockedFields[f] = struct{}{}
		}
		validatedFields = make(map[string]struct{}, len(p.EditableWhenValidated))
		for _, f := range p.EditableWhenValidated {
			validatedFields[f] = struct{}{}
		}
	})
}

// CanEditField reports whether a sample field may be edited. Before any
// result is validated every field is editable. Afterwards only fields on the
// explicit editable list remain open; anything else is denied, including
// fields the policy does not mention.
func CanEditField(field string, hasValidatedResults bool) bool {
	if !hasValidatedResults {
		return true
	}
	loadPolicy()
	if _, blocked := blockedFields[field]; blocked {
		return false
	}
	if _, ok := validatedFields[field]; ok {
		return true
	}
	return false
}
