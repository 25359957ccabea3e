package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/chalodk/lims-sub002/internal/apperr"
	"github.com/chalodk/lims-sub002/internal/types"
)

func newTestSampleService(sampleRepo *fakeSampleRepo, resultRepo *fakeResultRepo) SampleService {
	return NewSampleService(nil, testLogger(), sampleRepo, resultRepo, testSLACfg)
}

func TestUpdateSampleFields_EditGuard(t *testing.T) {
	companyID := uuid.New()
	sample := testSample(companyID, 24*time.Hour, types.StageProcessing)
	sampleRepo := newFakeSampleRepo(sample)
	resultRepo := newFakeResultRepo()
	svc := newTestSampleService(sampleRepo, resultRepo)

	// Before any validated result, every field is open.
	if err := svc.UpdateSampleFields(context.Background(), companyID, sample.ID, map[string]interface{}{"code": "S-2"}); err != nil {
		t.Fatalf("expected edit to pass before validation: %v", err)
	}

	// One validated result locks the blocked fields.
	resultRepo.hasValidated = true
	err := svc.UpdateSampleFields(context.Background(), companyID, sample.ID, map[string]interface{}{"code": "S-3"})
	if !apperr.IsValidation(err) {
		t.Fatalf("err = %v, want validation error for locked field", err)
	}

	// Fields on the still-editable list keep working.
	if err := svc.UpdateSampleFields(context.Background(), companyID, sample.ID, map[string]interface{}{"status": types.StageIsolation}); err != nil {
		t.Fatalf("expected status edit to pass after validation: %v", err)
	}

	// Unknown fields fail closed.
	err = svc.UpdateSampleFields(context.Background(), companyID, sample.ID, map[string]interface{}{"mystery": 1})
	if !apperr.IsValidation(err) {
		t.Fatalf("err = %v, want validation error for unknown field", err)
	}
}

func TestCreateSample_DerivesDueDate(t *testing.T) {
	companyID := uuid.New()
	sampleRepo := newFakeSampleRepo()
	svc := newTestSampleService(sampleRepo, newFakeResultRepo())

	received := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	created, err := svc.CreateSample(context.Background(), &types.Sample{
		CompanyID:    companyID,
		Code:         "S-100",
		SLAType:      types.SLATypeExpress,
		ReceivedDate: received,
	})
	if err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	wantDue := received.Add(5 * 24 * time.Hour)
	if !created.DueDate.Equal(wantDue) {
		t.Fatalf("due_date = %v, want %v", created.DueDate, wantDue)
	}
	if created.Status != types.StageReceived {
		t.Fatalf("status = %q, want received", created.Status)
	}
	if created.SLAStatus != types.SLAStatusOnTime {
		t.Fatalf("sla_status = %q, want on_time", created.SLAStatus)
	}
}

func TestCreateSample_RequiresCode(t *testing.T) {
	svc := newTestSampleService(newFakeSampleRepo(), newFakeResultRepo())

	_, err := svc.CreateSample(context.Background(), &types.Sample{CompanyID: uuid.New()})
	if !apperr.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}
