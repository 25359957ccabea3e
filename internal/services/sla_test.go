package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/chalodk/lims-sub002/internal/types"
)

var testSLACfg = SLAConfig{
	StandardDays:      10,
	ExpressDays:       5,
	AttentionFraction: 0.2,
}

func newTestSLAService(repo *fakeSampleRepo, now time.Time) SLAService {
	log := testLogger()
	return NewSLAService(nil, log, repo, testSLACfg, nil, func() time.Time { return now })
}

func testSample(companyID uuid.UUID, receivedAgo time.Duration, stage string) *types.Sample {
	now := time.Now()
	return &types.Sample{
		ID:           uuid.New(),
		CompanyID:    companyID,
		Code:         "S-1",
		Status:       stage,
		SLAType:      types.SLATypeStandard,
		ReceivedDate: now.Add(-receivedAgo),
	}
}

func TestClassifySLA(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	window := 10 * 24 * time.Hour

	cases := []struct {
		name     string
		stage    string
		received time.Time
		want     string
	}{
		{"whole window elapsed is breached", types.StageProcessing, now.Add(-10 * 24 * time.Hour), types.SLAStatusBreached},
		{"past due is breached", types.StageProcessing, now.Add(-11 * 24 * time.Hour), types.SLAStatusBreached},
		{"one day remaining is at risk", types.StageProcessing, now.Add(-9 * 24 * time.Hour), types.SLAStatusAtRisk},
		{"exactly at attention threshold is at risk", types.StageProcessing, now.Add(-8 * 24 * time.Hour), types.SLAStatusAtRisk},
		{"fresh sample is on time", types.StageProcessing, now.Add(-1 * 24 * time.Hour), types.SLAStatusOnTime},
		{"completed stage freezes", types.StageCompleted, now.Add(-30 * 24 * time.Hour), types.SLAStatusFrozen},
		{"validation stage freezes", types.StageValidation, now.Add(-30 * 24 * time.Hour), types.SLAStatusFrozen},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			due := tc.received.Add(window)
			got := ClassifySLA(tc.stage, due, window, 0.2, now)
			if got != tc.want {
				t.Fatalf("ClassifySLA = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestUpdateSampleSLAStatus_WritesConvergentValue(t *testing.T) {
	companyID := uuid.New()
	sample := testSample(companyID, 9*24*time.Hour, types.StageProcessing)
	repo := newFakeSampleRepo(sample)
	svc := newTestSLAService(repo, time.Now())

	if ok := svc.UpdateSampleSLAStatus(context.Background(), companyID, sample.ID); !ok {
		t.Fatalf("expected update to succeed")
	}
	if sample.SLAStatus != types.SLAStatusAtRisk {
		t.Fatalf("sla_status = %q, want at_risk", sample.SLAStatus)
	}
	wantDue := sample.ReceivedDate.Add(10 * 24 * time.Hour)
	if !sample.DueDate.Equal(wantDue) {
		t.Fatalf("due_date = %v, want %v", sample.DueDate, wantDue)
	}

	// A second writer computes the same value from the same inputs.
	before := sample.SLAStatus
	if ok := svc.UpdateSampleSLAStatus(context.Background(), companyID, sample.ID); !ok {
		t.Fatalf("expected repeat update to succeed")
	}
	if sample.SLAStatus != before {
		t.Fatalf("repeat update changed status %q -> %q", before, sample.SLAStatus)
	}
}

func TestUpdateSampleSLAStatus_MissingSampleReturnsFalse(t *testing.T) {
	repo := newFakeSampleRepo()
	svc := newTestSLAService(repo, time.Now())

	if ok := svc.UpdateSampleSLAStatus(context.Background(), uuid.New(), uuid.New()); ok {
		t.Fatalf("expected false for missing sample")
	}
}

func TestUpdateSampleSLAStatus_FreezeStopsTracking(t *testing.T) {
	companyID := uuid.New()
	sample := testSample(companyID, 30*24*time.Hour, types.StageCompleted)
	repo := newFakeSampleRepo(sample)
	svc := newTestSLAService(repo, time.Now())

	if ok := svc.UpdateSampleSLAStatus(context.Background(), companyID, sample.ID); !ok {
		t.Fatalf("expected freeze write to succeed")
	}
	if sample.SLAStatus != types.SLAStatusFrozen {
		t.Fatalf("sla_status = %q, want frozen", sample.SLAStatus)
	}

	// More time passing never thaws the status or produces another write.
	writesAfterFreeze := repo.slaWrites
	later := newTestSLAService(repo, time.Now().Add(90*24*time.Hour))
	for i := 0; i < 3; i++ {
		if ok := later.UpdateSampleSLAStatus(context.Background(), companyID, sample.ID); !ok {
			t.Fatalf("expected frozen refresh to report success")
		}
	}
	if sample.SLAStatus != types.SLAStatusFrozen {
		t.Fatalf("sla_status = %q after elapsed time, want frozen", sample.SLAStatus)
	}
	if repo.slaWrites != writesAfterFreeze {
		t.Fatalf("frozen sample was rewritten %d times", repo.slaWrites-writesAfterFreeze)
	}
}

func TestUpdateAllSLAStatuses_IsolatesRecordFailures(t *testing.T) {
	companyID := uuid.New()
	var samples []*types.Sample
	for i := 0; i < 5; i++ {
		samples = append(samples, testSample(companyID, time.Duration(i+1)*24*time.Hour, types.StageProcessing))
	}
	repo := newFakeSampleRepo(samples...)
	repo.failWriteFor[samples[2].ID] = true
	svc := newTestSLAService(repo, time.Now())

	summary := svc.UpdateAllSLAStatuses(context.Background(), companyID)
	if summary.Updated != 4 || summary.Errors != 1 {
		t.Fatalf("summary = %+v, want {Updated:4 Errors:1}", summary)
	}
}

func TestUpdateAllSLAStatuses_SkipsTerminalSamples(t *testing.T) {
	companyID := uuid.New()
	active := testSample(companyID, 24*time.Hour, types.StageProcessing)
	done := testSample(companyID, 24*time.Hour, types.StageCompleted)
	repo := newFakeSampleRepo(active, done)
	svc := newTestSLAService(repo, time.Now())

	summary := svc.UpdateAllSLAStatuses(context.Background(), companyID)
	if summary.Updated != 1 || summary.Errors != 0 {
		t.Fatalf("summary = %+v, want {Updated:1 Errors:0}", summary)
	}
	if done.SLAStatus != "" {
		t.Fatalf("terminal sample was touched: %q", done.SLAStatus)
	}
}

func TestGetSLAStats_CountsActiveBuckets(t *testing.T) {
	companyID := uuid.New()
	atRisk := testSample(companyID, 9*24*time.Hour, types.StageProcessing)
	atRisk.SLAStatus = types.SLAStatusAtRisk
	breached := testSample(companyID, 12*24*time.Hour, types.StageMicroscopy)
	breached.SLAStatus = types.SLAStatusBreached
	express := testSample(companyID, 24*time.Hour, types.StageReceived)
	express.SLAType = types.SLATypeExpress
	frozen := testSample(companyID, 24*time.Hour, types.StageCompleted)

	repo := newFakeSampleRepo(atRisk, breached, express, frozen)
	svc := newTestSLAService(repo, time.Now())

	stats, err := svc.GetSLAStats(context.Background(), companyID)
	if err != nil {
		t.Fatalf("GetSLAStats: %v", err)
	}
	if stats.TotalActive != 3 || stats.Express != 1 || stats.AtRisk != 1 || stats.Breached != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}
