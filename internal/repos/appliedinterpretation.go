package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chalodk/lims-sub002/internal/apperr"
	"github.com/chalodk/lims-sub002/internal/logger"
	"github.com/chalodk/lims-sub002/internal/types"
)

type AppliedInterpretationRepo interface {
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, interp *types.AppliedInterpretation) error
	GetBySampleID(ctx context.Context, tx *gorm.DB, companyID, sampleID uuid.UUID) ([]*types.AppliedInterpretation, error)
}

type appliedInterpretationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAppliedInterpretationRepo(db *gorm.DB, baseLog *logger.Logger) AppliedInterpretationRepo {
	repoLog := baseLog.With("repo", "AppliedInterpretationRepo")
	return &appliedInterpretationRepo{db: db, log: repoLog}
}

// CreateIfAbsent inserts the interpretation unless one already exists for the
// same (rule_id, result_id) pair. The conflict target is the unique index on
// that pair, so concurrent evaluations of one sample cannot duplicate a match.
func (r *appliedInterpretationRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, interp *types.AppliedInterpretation) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if interp == nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "rule_id"}, {Name: "result_id"}},
			DoNothing: true,
		}).
		Create(interp).Error; err != nil {
		return apperr.NewStorage("applied interpretation create", err)
	}
	return nil
}

func (r *appliedInterpretationRepo) GetBySampleID(ctx context.Context, tx *gorm.DB, companyID, sampleID uuid.UUID) ([]*types.AppliedInterpretation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AppliedInterpretation
	if err := transaction.WithContext(ctx).
		Where("company_id = ? AND sample_id = ?", companyID, sampleID).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, apperr.NewStorage("applied interpretation get by sample", err)
	}
	return results, nil
}
