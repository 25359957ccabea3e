package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/chalodk/lims-sub002/internal/apperr"
	"github.com/chalodk/lims-sub002/internal/logger"
	"github.com/chalodk/lims-sub002/internal/repos"
	"github.com/chalodk/lims-sub002/internal/types"
)

// RuleSpec is the analyst-facing input for creating an interpretation rule.
// Species and CropNext left nil mean "match any".
type RuleSpec struct {
	TestArea   string          `json:"test_area"`
	Species    *string         `json:"species"`
	CropNext   *string         `json:"crop_next"`
	Analyte    string          `json:"analyte"`
	Comparator string          `json:"comparator"`
	Threshold  json.RawMessage `json:"threshold"`
	Message    string          `json:"message"`
	Severity   string          `json:"severity"`
	Active     *bool           `json:"active"`
}

type InterpretationService interface {
	GetRules(ctx context.Context, companyID uuid.UUID, filter repos.RuleFilter) ([]*types.InterpretationRule, error)
	CreateRule(ctx context.Context, companyID uuid.UUID, spec RuleSpec) (*types.InterpretationRule, error)
	EvaluateAndApplyRules(ctx context.Context, companyID, sampleID uuid.UUID) ([]*types.AppliedInterpretation, error)
}

type interpretationService struct {
	db          *gorm.DB
	log         *logger.Logger
	sampleRepo  repos.SampleRepo
	resultRepo  repos.ResultRepo
	ruleRepo    repos.InterpretationRuleRepo
	appliedRepo repos.AppliedInterpretationRepo
}

func NewInterpretationService(
	db *gorm.DB,
	log *logger.Logger,
	sampleRepo repos.SampleRepo,
	resultRepo repos.ResultRepo,
	ruleRepo repos.InterpretationRuleRepo,
	appliedRepo repos.AppliedInterpretationRepo,
) InterpretationService {
	serviceLog := log.With("service", "InterpretationService")
	return &interpretationService{
		db:          db,
		log:         serviceLog,
		sampleRepo:  sampleRepo,
		resultRepo:  resultRepo,
		ruleRepo:    ruleRepo,
		appliedRepo: appliedRepo,
	}
}

func (s *interpretationService) GetRules(ctx context.Context, companyID uuid.UUID, filter repos.RuleFilter) ([]*types.InterpretationRule, error) {
	return s.ruleRepo.List(ctx, nil, companyID, filter)
}

func (s *interpretationService) CreateRule(ctx context.Context, companyID uuid.UUID, spec RuleSpec) (*types.InterpretationRule, error) {
	if strings.TrimSpace(spec.TestArea) == "" {
		return nil, apperr.NewValidation("test_area", "required")
	}
	if strings.TrimSpace(spec.Analyte) == "" {
		return nil, apperr.NewValidation("analyte", "required")
	}
	if strings.TrimSpace(spec.Message) == "" {
		return nil, apperr.NewValidation("message", "required")
	}
	if !types.ValidComparator(spec.Comparator) {
		return nil, apperr.NewValidation("comparator", "must be one of lt, lte, gt, gte, eq, neq, between, in")
	}
	if !types.ValidSeverity(spec.Severity) {
		return nil, apperr.NewValidation("severity", "must be one of low, medium, high, critical")
	}
	if err := validateThreshold(spec.Comparator, spec.Threshold); err != nil {
		return nil, err
	}

	active := true
	if spec.Active != nil {
		active = *spec.Active
	}
	rule := &types.InterpretationRule{
		CompanyID:  companyID,
		TestArea:   spec.TestArea,
		Species:    spec.Species,
		CropNext:   spec.CropNext,
		Analyte:    spec.Analyte,
		Comparator: spec.Comparator,
		Threshold:  datatypes.JSON(spec.Threshold),
		Message:    spec.Message,
		Severity:   spec.Severity,
		Active:     active,
	}
	created, err := s.ruleRepo.Create(ctx, nil, []*types.InterpretationRule{rule})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

// validateThreshold checks the payload shape against the comparator at rule
// creation, so evaluation never sees a rule it cannot interpret.
func validateThreshold(comparator string, raw json.RawMessage) error {
	tp, err := types.DecodeThreshold(raw)
	if err != nil {
		return apperr.NewValidation("threshold", err.Error())
	}
	switch comparator {
	case types.ComparatorLT, types.ComparatorLTE, types.ComparatorGT, types.ComparatorGTE:
		if _, ok := tp.ValueNumber(); !ok {
			return apperr.NewValidation("threshold", "numeric comparators need {\"value\": number}")
		}
	case types.ComparatorEQ, types.ComparatorNEQ:
		if _, ok := tp.ValueString(); !ok {
			return apperr.NewValidation("threshold", "eq/neq need {\"value\": number|string}")
		}
	case types.ComparatorBetween:
		min, max, ok := tp.Range()
		if !ok {
			return apperr.NewValidation("threshold", "between needs {\"min\": number, \"max\": number}")
		}
		if min > max {
			return apperr.NewValidation("threshold", "between needs min <= max")
		}
	case types.ComparatorIn:
		if _, ok := tp.List(); !ok {
			return apperr.NewValidation("threshold", "in needs {\"values\": [...]}")
		}
	}
	return nil
}

// EvaluateAndApplyRules matches every active rule against the sample's
// results and persists new matches idempotently. Unlike the SLA sweep this is
// all-or-nothing: any storage failure aborts the call, because a partial
// interpretation set would misrepresent the sample.
func (s *interpretationService) EvaluateAndApplyRules(ctx context.Context, companyID, sampleID uuid.UUID) ([]*types.AppliedInterpretation, error) {
	sample, err := s.sampleRepo.GetByID(ctx, nil, companyID, sampleID)
	if err != nil {
		return nil, err
	}

	results, err := s.resultRepo.GetBySampleID(ctx, nil, companyID, sampleID)
	if err != nil {
		return nil, err
	}

	active := true
	rules, err := s.ruleRepo.List(ctx, nil, companyID, repos.RuleFilter{Active: &active})
	if err != nil {
		return nil, err
	}

	for _, result := range results {
		for _, rule := range rules {
			if !ruleScopeMatches(rule, sample, result) {
				continue
			}
			matched, ok := evaluateComparator(rule, result.Value)
			if !ok {
				// Threshold payload unusable at evaluation time; the rule
				// simply does not match this result.
				s.log.Warn("Skipping rule with undecodable threshold", "rule_id", rule.ID)
				continue
			}
			if !matched {
				continue
			}
			interp := &types.AppliedInterpretation{
				CompanyID: companyID,
				SampleID:  sample.ID,
				RuleID:    rule.ID,
				ResultID:  result.ID,
				Message:   renderMessage(rule.Message, sample.Species, rule.Analyte, result.Value),
				Severity:  rule.Severity,
			}
			if err := s.appliedRepo.CreateIfAbsent(ctx, nil, interp); err != nil {
				return nil, err
			}
		}
	}

	// Callers treat the return value as the authoritative current set, not
	// only the newly created matches.
	return s.appliedRepo.GetBySampleID(ctx, nil, companyID, sampleID)
}

// ruleScopeMatches tests area, analyte and the wildcardable species/crop
// fields. A nil species or crop on the rule matches any sample.
func ruleScopeMatches(rule *types.InterpretationRule, sample *types.Sample, result *types.Result) bool {
	if rule.TestArea != result.TestArea {
		return false
	}
	if rule.Analyte != result.Diagnosis {
		return false
	}
	if rule.Species != nil && *rule.Species != sample.Species {
		return false
	}
	if rule.CropNext != nil && *rule.CropNext != sample.CropNext {
		return false
	}
	return true
}

// evaluateComparator tests the result value against the rule's threshold.
// The second return is false only when the stored threshold cannot be
// decoded; a value that cannot be coerced the way the comparator requires is
// an ordinary non-match.
func evaluateComparator(rule *types.InterpretationRule, value string) (bool, bool) {
	tp, err := types.DecodeThreshold(rule.Threshold)
	if err != nil {
		return false, false
	}

	switch rule.Comparator {
	case types.ComparatorLT, types.ComparatorLTE, types.ComparatorGT, types.ComparatorGTE:
		threshold, ok := tp.ValueNumber()
		if !ok {
			return false, false
		}
		observed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return false, true
		}
		switch rule.Comparator {
		case types.ComparatorLT:
			return observed < threshold, true
		case types.ComparatorLTE:
			return observed <= threshold, true
		case types.ComparatorGT:
			return observed > threshold, true
		default:
			return observed >= threshold, true
		}

	case types.ComparatorEQ, types.ComparatorNEQ:
		equal := thresholdEquals(tp, value)
		if rule.Comparator == types.ComparatorEQ {
			return equal, true
		}
		return !equal, true

	case types.ComparatorBetween:
		min, max, ok := tp.Range()
		if !ok {
			return false, false
		}
		observed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return false, true
		}
		return observed >= min && observed <= max, true

	case types.ComparatorIn:
		list, ok := tp.List()
		if !ok {
			return false, false
		}
		for _, candidate := range list {
			if valuesEqual(candidate, value) {
				return true, true
			}
		}
		return false, true
	}

	return false, false
}

// thresholdEquals compares numerically when both sides parse as numbers and
// falls back to exact string equality otherwise.
func thresholdEquals(tp *types.ThresholdPayload, value string) bool {
	if threshold, ok := tp.ValueNumber(); ok {
		if observed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return observed == threshold
		}
	}
	if s, ok := tp.ValueString(); ok {
		return s == value
	}
	return false
}

func valuesEqual(candidate, value string) bool {
	if cf, err := strconv.ParseFloat(strings.TrimSpace(candidate), 64); err == nil {
		if vf, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return cf == vf
		}
	}
	return candidate == value
}

// renderMessage fills the {species}, {analyte} and {value} placeholders from
// the matched context.
func renderMessage(template, species, analyte, value string) string {
	replacer := strings.NewReplacer(
		"{species}", species,
		"{analyte}", analyte,
		"{value}", value,
	)
	return replacer.Replace(template)
}
