package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chalodk/lims-sub002/internal/apperr"
	"github.com/chalodk/lims-sub002/internal/logger"
	"github.com/chalodk/lims-sub002/internal/repos"
	"github.com/chalodk/lims-sub002/internal/types"
)

func testLogger() *logger.Logger {
	log, err := logger.New("development")
	if err != nil {
		panic(err)
	}
	return log
}

// In-memory repo fakes. The engines only ever touch storage through the repo
// interfaces, so these are enough to exercise every decision path.

type fakeSampleRepo struct {
	mu           sync.Mutex
	samples      map[uuid.UUID]*types.Sample
	failWriteFor map[uuid.UUID]bool
	failReads    bool
	slaWrites    int
}

func newFakeSampleRepo(samples ...*types.Sample) *fakeSampleRepo {
	m := make(map[uuid.UUID]*types.Sample, len(samples))
	for _, s := range samples {
		m[s.ID] = s
	}
	return &fakeSampleRepo{samples: m, failWriteFor: map[uuid.UUID]bool{}}
}

func (f *fakeSampleRepo) Create(ctx context.Context, tx *gorm.DB, samples []*types.Sample) ([]*types.Sample, error) {
	for _, s := range samples {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		f.samples[s.ID] = s
	}
	return samples, nil
}

func (f *fakeSampleRepo) GetByID(ctx context.Context, tx *gorm.DB, companyID, sampleID uuid.UUID) (*types.Sample, error) {
	if f.failReads {
		return nil, apperr.NewStorage("sample get", errors.New("read refused"))
	}
	s, ok := f.samples[sampleID]
	if !ok || s.CompanyID != companyID {
		return nil, apperr.ErrNotFound
	}
	return s, nil
}

func (f *fakeSampleRepo) List(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Sample, error) {
	var out []*types.Sample
	for _, s := range f.samples {
		if s.CompanyID == companyID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSampleRepo) GetActive(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Sample, error) {
	if f.failReads {
		return nil, apperr.NewStorage("sample get active", errors.New("read refused"))
	}
	var out []*types.Sample
	for _, s := range f.samples {
		if s.CompanyID == companyID && !types.IsTerminalStage(s.Status) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSampleRepo) UpdateSLA(ctx context.Context, tx *gorm.DB, sampleID uuid.UUID, dueDate time.Time, slaStatus string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWriteFor[sampleID] {
		return apperr.NewStorage("sample update sla", errors.New("write refused"))
	}
	s, ok := f.samples[sampleID]
	if !ok {
		return apperr.ErrNotFound
	}
	s.DueDate = dueDate
	s.SLAStatus = slaStatus
	f.slaWrites++
	return nil
}

func (f *fakeSampleRepo) UpdateFields(ctx context.Context, tx *gorm.DB, companyID, sampleID uuid.UUID, fields map[string]interface{}) error {
	if _, ok := f.samples[sampleID]; !ok {
		return apperr.ErrNotFound
	}
	return nil
}

func (f *fakeSampleRepo) ListNeedingAttention(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Sample, error) {
	var out []*types.Sample
	for _, s := range f.samples {
		if s.CompanyID == companyID && (s.SLAStatus == types.SLAStatusAtRisk || s.SLAStatus == types.SLAStatusBreached) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSampleRepo) CountSLA(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) (*repos.SLACounts, error) {
	counts := &repos.SLACounts{}
	for _, s := range f.samples {
		if s.CompanyID != companyID || types.IsTerminalStage(s.Status) {
			continue
		}
		counts.TotalActive++
		if s.SLAType == types.SLATypeExpress {
			counts.Express++
		}
		switch s.SLAStatus {
		case types.SLAStatusAtRisk:
			counts.AtRisk++
		case types.SLAStatusBreached:
			counts.Breached++
		}
	}
	return counts, nil
}

type fakeResultRepo struct {
	results      map[uuid.UUID][]*types.Result
	hasValidated bool
	failReads    bool
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{results: map[uuid.UUID][]*types.Result{}}
}

func (f *fakeResultRepo) Create(ctx context.Context, tx *gorm.DB, results []*types.Result) ([]*types.Result, error) {
	for _, r := range results {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		f.results[r.SampleID] = append(f.results[r.SampleID], r)
	}
	return results, nil
}

func (f *fakeResultRepo) GetBySampleID(ctx context.Context, tx *gorm.DB, companyID, sampleID uuid.UUID) ([]*types.Result, error) {
	if f.failReads {
		return nil, apperr.NewStorage("result get by sample", errors.New("read refused"))
	}
	return f.results[sampleID], nil
}

func (f *fakeResultRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, companyID, resultID uuid.UUID, status string) error {
	return nil
}

func (f *fakeResultRepo) HasValidatedBySampleID(ctx context.Context, tx *gorm.DB, companyID, sampleID uuid.UUID) (bool, error) {
	return f.hasValidated, nil
}

type fakeRuleRepo struct {
	rules []*types.InterpretationRule
}

func (f *fakeRuleRepo) Create(ctx context.Context, tx *gorm.DB, rules []*types.InterpretationRule) ([]*types.InterpretationRule, error) {
	for _, r := range rules {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		f.rules = append(f.rules, r)
	}
	return rules, nil
}

func (f *fakeRuleRepo) GetByID(ctx context.Context, tx *gorm.DB, companyID, ruleID uuid.UUID) (*types.InterpretationRule, error) {
	for _, r := range f.rules {
		if r.ID == ruleID {
			return r, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeRuleRepo) List(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, filter repos.RuleFilter) ([]*types.InterpretationRule, error) {
	var out []*types.InterpretationRule
	for _, r := range f.rules {
		if r.CompanyID != companyID {
			continue
		}
		if filter.TestArea != nil && r.TestArea != *filter.TestArea {
			continue
		}
		if filter.Active != nil && r.Active != *filter.Active {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// fakeAppliedRepo mimics the (rule_id, result_id) unique index: a second
// insert for the same pair is a silent no-op, exactly like ON CONFLICT DO
// NOTHING.
type fakeAppliedRepo struct {
	byPair     map[string]*types.AppliedInterpretation
	failWrites bool
}

func newFakeAppliedRepo() *fakeAppliedRepo {
	return &fakeAppliedRepo{byPair: map[string]*types.AppliedInterpretation{}}
}

func pairKey(ruleID, resultID uuid.UUID) string {
	return ruleID.String() + "|" + resultID.String()
}

func (f *fakeAppliedRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, interp *types.AppliedInterpretation) error {
	if f.failWrites {
		return apperr.NewStorage("applied interpretation create", errors.New("write refused"))
	}
	key := pairKey(interp.RuleID, interp.ResultID)
	if _, exists := f.byPair[key]; exists {
		return nil
	}
	interp.ID = uuid.New()
	f.byPair[key] = interp
	return nil
}

func (f *fakeAppliedRepo) GetBySampleID(ctx context.Context, tx *gorm.DB, companyID, sampleID uuid.UUID) ([]*types.AppliedInterpretation, error) {
	var out []*types.AppliedInterpretation
	for _, interp := range f.byPair {
		if interp.CompanyID == companyID && interp.SampleID == sampleID {
			out = append(out, interp)
		}
	}
	return out, nil
}
