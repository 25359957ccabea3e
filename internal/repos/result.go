package repos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chalodk/lims-sub002/internal/apperr"
	"github.com/chalodk/lims-sub002/internal/logger"
	"github.com/chalodk/lims-sub002/internal/types"
)

type ResultRepo interface {
	Create(ctx context.Context, tx *gorm.DB, results []*types.Result) ([]*types.Result, error)
	GetBySampleID(ctx context.Context, tx *gorm.DB, companyID, sampleID uuid.UUID) ([]*types.Result, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, companyID, resultID uuid.UUID, status string) error
	HasValidatedBySampleID(ctx context.Context, tx *gorm.DB, companyID, sampleID uuid.UUID) (bool, error)
}

type resultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResultRepo(db *gorm.DB, baseLog *logger.Logger) ResultRepo {
	repoLog := baseLog.With("repo", "ResultRepo")
	return &resultRepo{db: db, log: repoLog}
}

func (r *resultRepo) Create(ctx context.Context, tx *gorm.DB, results []*types.Result) ([]*types.Result, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(results) == 0 {
		return []*types.Result{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&results).Error; err != nil {
		return nil, apperr.NewStorage("result create", err)
	}
	return results, nil
}

func (r *resultRepo) GetBySampleID(ctx context.Context, tx *gorm.DB, companyID, sampleID uuid.UUID) ([]*types.Result, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Result
	if err := transaction.WithContext(ctx).
		Where("company_id = ? AND sample_id = ?", companyID, sampleID).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, apperr.NewStorage("result get by sample", err)
	}
	return results, nil
}

// UpdateStatus enforces the forward-only lifecycle: the guard clause refuses
// to move a result backwards, and a validated result never changes again.
func (r *resultRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, companyID, resultID uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if types.ResultStatusRank(status) < 0 {
		return apperr.NewValidation("status", fmt.Sprintf("unknown result status %q", status))
	}

	res := transaction.WithContext(ctx).
		Model(&types.Result{}).
		Where("id = ? AND company_id = ?", resultID, companyID).
		Where("status != ?", types.ResultStatusValidated).
		Where("CASE status WHEN 'pending' THEN 0 WHEN 'completed' THEN 1 ELSE 2 END < ?", types.ResultStatusRank(status)).
		Update("status", status)
	if res.Error != nil {
		return apperr.NewStorage("result update status", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NewValidation("status", "result missing or status cannot regress")
	}
	return nil
}

func (r *resultRepo) HasValidatedBySampleID(ctx context.Context, tx *gorm.DB, companyID, sampleID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Result{}).
		Where("company_id = ? AND sample_id = ? AND status = ?", companyID, sampleID, types.ResultStatusValidated).
		Count(&count).Error; err != nil {
		return false, apperr.NewStorage("result count validated", err)
	}
	return count > 0, nil
}
