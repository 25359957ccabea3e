package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/chalodk/lims-sub002/internal/logger"
	"github.com/chalodk/lims-sub002/internal/repos"
	"github.com/chalodk/lims-sub002/internal/types"
)

// SLAConfig carries the deployment-configured deadline windows. Defaults are
// wired from env in main (SLA_STANDARD_DAYS=10, SLA_EXPRESS_DAYS=5,
// SLA_ATTENTION_FRACTION=0.2).
type SLAConfig struct {
	StandardDays      int
	ExpressDays       int
	AttentionFraction float64
}

// Window returns the allotted time between receipt and the due date for the
// given urgency class.
func (c SLAConfig) Window(slaType string) time.Duration {
	days := c.StandardDays
	if slaType == types.SLATypeExpress {
		days = c.ExpressDays
	}
	return time.Duration(days) * 24 * time.Hour
}

type SLASweepSummary struct {
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

type SLAStats struct {
	Express     int64 `json:"express"`
	AtRisk      int64 `json:"at_risk"`
	Breached    int64 `json:"breached"`
	TotalActive int64 `json:"total_active"`
}

// SLAStatsCache is an optional read-through cache for dashboard stats.
type SLAStatsCache interface {
	Get(ctx context.Context, companyID uuid.UUID) (*SLAStats, bool)
	Set(ctx context.Context, companyID uuid.UUID, stats *SLAStats)
}

type SLAService interface {
	UpdateSampleSLAStatus(ctx context.Context, companyID, sampleID uuid.UUID) bool
	UpdateAllSLAStatuses(ctx context.Context, companyID uuid.UUID) SLASweepSummary
	GetSLAStats(ctx context.Context, companyID uuid.UUID) (*SLAStats, error)
	GetSamplesNeedingAttention(ctx context.Context, companyID uuid.UUID) ([]*types.Sample, error)
}

type slaService struct {
	db         *gorm.DB
	log        *logger.Logger
	sampleRepo repos.SampleRepo
	cfg        SLAConfig
	statsCache SLAStatsCache
	now        func() time.Time
}

const slaSweepWorkers = 8

func NewSLAService(
	db *gorm.DB,
	log *logger.Logger,
	sampleRepo repos.SampleRepo,
	cfg SLAConfig,
	statsCache SLAStatsCache,
	now func() time.Time,
) SLAService {
	serviceLog := log.With("service", "SLAService")
	if now == nil {
		now = time.Now
	}
	return &slaService{
		db:         db,
		log:        serviceLog,
		sampleRepo: sampleRepo,
		cfg:        cfg,
		statsCache: statsCache,
		now:        now,
	}
}

// ClassifySLA buckets a sample's deadline risk. The classification is a pure
// function of the stage, due date, window and clock, evaluated breach-first:
// terminal stages freeze, then breached, then at_risk, then on_time.
func ClassifySLA(stage string, dueDate time.Time, window time.Duration, attentionFraction float64, now time.Time) string {
	if types.IsTerminalStage(stage) {
		return types.SLAStatusFrozen
	}
	if !now.Before(dueDate) {
		return types.SLAStatusBreached
	}
	remaining := dueDate.Sub(now)
	attention := time.Duration(float64(window) * attentionFraction)
	if remaining <= attention {
		return types.SLAStatusAtRisk
	}
	return types.SLAStatusOnTime
}

// refresh recomputes and writes one sample's due date and status. The write
// is a single UPDATE, so concurrent refreshes converge: every writer computes
// the same value from the same stored inputs.
func (s *slaService) refresh(ctx context.Context, sample *types.Sample) error {
	window := s.cfg.Window(sample.SLAType)
	dueDate := sample.ReceivedDate.Add(window)
	status := ClassifySLA(sample.Status, dueDate, window, s.cfg.AttentionFraction, s.now())

	// A frozen sample stays exactly as last written; tracking has stopped.
	if status == types.SLAStatusFrozen && sample.SLAStatus == types.SLAStatusFrozen && sample.DueDate.Equal(dueDate) {
		return nil
	}

	return s.sampleRepo.UpdateSLA(ctx, nil, sample.ID, dueDate, status)
}

func (s *slaService) UpdateSampleSLAStatus(ctx context.Context, companyID, sampleID uuid.UUID) bool {
	sample, err := s.sampleRepo.GetByID(ctx, nil, companyID, sampleID)
	if err != nil {
		s.log.Warn("SLA refresh lookup failed", "sample_id", sampleID, "error", err)
		return false
	}
	if err := s.refresh(ctx, sample); err != nil {
		s.log.Warn("SLA refresh write failed", "sample_id", sampleID, "error", err)
		return false
	}
	return true
}

// UpdateAllSLAStatuses sweeps every non-terminal sample for the company. One
// record's failure never aborts the sweep; failures are counted and reported.
func (s *slaService) UpdateAllSLAStatuses(ctx context.Context, companyID uuid.UUID) SLASweepSummary {
	samples, err := s.sampleRepo.GetActive(ctx, nil, companyID)
	if err != nil {
		s.log.Error("SLA sweep could not list active samples", "company_id", companyID, "error", err)
		return SLASweepSummary{Errors: 1}
	}

	var updated, failed int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(slaSweepWorkers)
	for _, sample := range samples {
		g.Go(func() error {
			if err := s.refresh(gctx, sample); err != nil {
				s.log.Warn("SLA sweep record failed", "sample_id", sample.ID, "error", err)
				atomic.AddInt64(&failed, 1)
				return nil
			}
			atomic.AddInt64(&updated, 1)
			return nil
		})
	}
	_ = g.Wait()

	summary := SLASweepSummary{Updated: int(updated), Errors: int(failed)}
	s.log.Info("SLA sweep finished", "company_id", companyID, "updated", summary.Updated, "errors", summary.Errors)
	return summary
}

func (s *slaService) GetSLAStats(ctx context.Context, companyID uuid.UUID) (*SLAStats, error) {
	if s.statsCache != nil {
		if stats, ok := s.statsCache.Get(ctx, companyID); ok {
			return stats, nil
		}
	}

	counts, err := s.sampleRepo.CountSLA(ctx, nil, companyID)
	if err != nil {
		return nil, err
	}
	stats := &SLAStats{
		Express:     counts.Express,
		AtRisk:      counts.AtRisk,
		Breached:    counts.Breached,
		TotalActive: counts.TotalActive,
	}
	if s.statsCache != nil {
		s.statsCache.Set(ctx, companyID, stats)
	}
	return stats, nil
}

func (s *slaService) GetSamplesNeedingAttention(ctx context.Context, companyID uuid.UUID) ([]*types.Sample, error) {
	return s.sampleRepo.ListNeedingAttention(ctx, nil, companyID)
}
