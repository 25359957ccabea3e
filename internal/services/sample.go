package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chalodk/lims-sub002/internal/apperr"
	"github.com/chalodk/lims-sub002/internal/logger"
	"github.com/chalodk/lims-sub002/internal/permissions"
	"github.com/chalodk/lims-sub002/internal/repos"
	"github.com/chalodk/lims-sub002/internal/types"
)

type SampleService interface {
	CreateSample(ctx context.Context, sample *types.Sample) (*types.Sample, error)
	GetSample(ctx context.Context, companyID, sampleID uuid.UUID) (*types.Sample, error)
	ListSamples(ctx context.Context, companyID uuid.UUID) ([]*types.Sample, error)
	UpdateSampleFields(ctx context.Context, companyID, sampleID uuid.UUID, fields map[string]interface{}) error
	GetResults(ctx context.Context, companyID, sampleID uuid.UUID) ([]*types.Result, error)
}

type sampleService struct {
	db         *gorm.DB
	log        *logger.Logger
	sampleRepo repos.SampleRepo
	resultRepo repos.ResultRepo
	slaCfg     SLAConfig
}

func NewSampleService(
	db *gorm.DB,
	log *logger.Logger,
	sampleRepo repos.SampleRepo,
	resultRepo repos.ResultRepo,
	slaCfg SLAConfig,
) SampleService {
	serviceLog := log.With("service", "SampleService")
	return &sampleService{
		db:         db,
		log:        serviceLog,
		sampleRepo: sampleRepo,
		resultRepo: resultRepo,
		slaCfg:     slaCfg,
	}
}

func (s *sampleService) CreateSample(ctx context.Context, sample *types.Sample) (*types.Sample, error) {
	if sample.Code == "" {
		return nil, apperr.NewValidation("code", "required")
	}
	if sample.CompanyID == uuid.Nil {
		return nil, apperr.NewValidation("company_id", "required")
	}
	if sample.SLAType == "" {
		sample.SLAType = types.SLATypeStandard
	}
	if sample.Status == "" {
		sample.Status = types.StageReceived
	}
	if sample.ReceivedDate.IsZero() {
		sample.ReceivedDate = time.Now()
	}
	// The due date is a pure function of receipt time and urgency class.
	sample.DueDate = sample.ReceivedDate.Add(s.slaCfg.Window(sample.SLAType))
	sample.SLAStatus = types.SLAStatusOnTime

	created, err := s.sampleRepo.Create(ctx, nil, []*types.Sample{sample})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (s *sampleService) GetSample(ctx context.Context, companyID, sampleID uuid.UUID) (*types.Sample, error) {
	return s.sampleRepo.GetByID(ctx, nil, companyID, sampleID)
}

func (s *sampleService) ListSamples(ctx context.Context, companyID uuid.UUID) ([]*types.Sample, error) {
	return s.sampleRepo.List(ctx, nil, companyID)
}

// UpdateSampleFields applies the field-level edit policy before touching the
// record: once any result on the sample is validated, only fields the policy
// leaves open may change.
func (s *sampleService) UpdateSampleFields(ctx context.Context, companyID, sampleID uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	hasValidated, err := s.resultRepo.HasValidatedBySampleID(ctx, nil, companyID, sampleID)
	if err != nil {
		return err
	}
	for field := range fields {
		if !permissions.CanEditField(field, hasValidated) {
			return apperr.NewValidation(field, "field is locked once results are validated")
		}
	}

	return s.sampleRepo.UpdateFields(ctx, nil, companyID, sampleID, fields)
}

func (s *sampleService) GetResults(ctx context.Context, companyID, sampleID uuid.UUID) ([]*types.Result, error) {
	if _, err := s.sampleRepo.GetByID(ctx, nil, companyID, sampleID); err != nil {
		return nil, err
	}
	return s.resultRepo.GetBySampleID(ctx, nil, companyID, sampleID)
}
