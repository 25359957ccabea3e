package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chalodk/lims-sub002/internal/apperr"
	"github.com/chalodk/lims-sub002/internal/logger"
	"github.com/chalodk/lims-sub002/internal/types"
)

type SLACounts struct {
	Express     int64
	AtRisk      int64
	Breached    int64
	TotalActive int64
}

type SampleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, samples []*types.Sample) ([]*types.Sample, error)
	GetByID(ctx context.Context, tx *gorm.DB, companyID, sampleID uuid.UUID) (*types.Sample, error)
	List(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Sample, error)
	GetActive(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Sample, error)
	UpdateSLA(ctx context.Context, tx *gorm.DB, sampleID uuid.UUID, dueDate time.Time, slaStatus string) error
	UpdateFields(ctx context.Context, tx *gorm.DB, companyID, sampleID uuid.UUID, fields map[string]interface{}) error
	ListNeedingAttention(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Sample, error)
	CountSLA(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) (*SLACounts, error)
}

type sampleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSampleRepo(db *gorm.DB, baseLog *logger.Logger) SampleRepo {
	repoLog := baseLog.With("repo", "SampleRepo")
	return &sampleRepo{db: db, log: repoLog}
}

func (r *sampleRepo) Create(ctx context.Context, tx *gorm.DB, samples []*types.Sample) ([]*types.Sample, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(samples) == 0 {
		return []*types.Sample{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&samples).Error; err != nil {
		return nil, apperr.NewStorage("sample create", err)
	}
	return samples, nil
}

func (r *sampleRepo) GetByID(ctx context.Context, tx *gorm.DB, companyID, sampleID uuid.UUID) (*types.Sample, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var sample types.Sample
	err := transaction.WithContext(ctx).
		Where("id = ? AND company_id = ?", sampleID, companyID).
		First(&sample).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.NewStorage("sample get", err)
	}
	return &sample, nil
}

func (r *sampleRepo) List(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Sample, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Sample
	if err := transaction.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("received_date DESC").
		Find(&results).Error; err != nil {
		return nil, apperr.NewStorage("sample list", err)
	}
	return results, nil
}

func (r *sampleRepo) GetActive(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Sample, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Sample
	if err := transaction.WithContext(ctx).
		Where("company_id = ? AND status NOT IN ?", companyID,
			[]string{types.StageValidation, types.StageCompleted}).
		Find(&results).Error; err != nil {
		return nil, apperr.NewStorage("sample get active", err)
	}
	return results, nil
}

func (r *sampleRepo) UpdateSLA(ctx context.Context, tx *gorm.DB, sampleID uuid.UUID, dueDate time.Time, slaStatus string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	// Single UPDATE so the due date and status land together or not at all.
	if err := transaction.WithContext(ctx).
		Model(&types.Sample{}).
		Where("id = ?", sampleID).
		Updates(map[string]interface{}{
			"due_date":   dueDate,
			"sla_status": slaStatus,
		}).Error; err != nil {
		return apperr.NewStorage("sample update sla", err)
	}
	return nil
}

func (r *sampleRepo) UpdateFields(ctx context.Context, tx *gorm.DB, companyID, sampleID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	res := transaction.WithContext(ctx).
		Model(&types.Sample{}).
		Where("id = ? AND company_id = ?", sampleID, companyID).
		Updates(fields)
	if res.Error != nil {
		return apperr.NewStorage("sample update fields", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *sampleRepo) ListNeedingAttention(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]*types.Sample, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Sample
	if err := transaction.WithContext(ctx).
		Where("company_id = ? AND sla_status IN ?", companyID,
			[]string{types.SLAStatusAtRisk, types.SLAStatusBreached}).
		Order("due_date ASC, received_date ASC").
		Find(&results).Error; err != nil {
		return nil, apperr.NewStorage("sample list needing attention", err)
	}
	return results, nil
}

func (r *sampleRepo) CountSLA(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) (*SLACounts, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	active := func() *gorm.DB {
		return transaction.WithContext(ctx).
			Model(&types.Sample{}).
			Where("company_id = ? AND status NOT IN ?", companyID,
				[]string{types.StageValidation, types.StageCompleted})
	}

	var counts SLACounts
	if err := active().Count(&counts.TotalActive).Error; err != nil {
		return nil, apperr.NewStorage("sample count active", err)
	}
	if err := active().Where("sla_type = ?", types.SLATypeExpress).Count(&counts.Express).Error; err != nil {
		return nil, apperr.NewStorage("sample count express", err)
	}
	if err := active().Where("sla_status = ?", types.SLAStatusAtRisk).Count(&counts.AtRisk).Error; err != nil {
		return nil, apperr.NewStorage("sample count at risk", err)
	}
	if err := active().Where("sla_status = ?", types.SLAStatusBreached).Count(&counts.Breached).Error; err != nil {
		return nil, apperr.NewStorage("sample count breached", err)
	}
	return &counts, nil
}
