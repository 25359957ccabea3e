package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chalodk/lims-sub002/internal/apperr"
	"github.com/chalodk/lims-sub002/internal/logger"
	"github.com/chalodk/lims-sub002/internal/types"
)

// RuleFilter narrows rule listings. Nil fields mean no constraint.
type RuleFilter struct {
	TestArea *string
	Active   *bool
}

type InterpretationRuleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rules []*types.InterpretationRule) ([]*types.InterpretationRule, error)
	GetByID(ctx context.Context, tx *gorm.DB, companyID, ruleID uuid.UUID) (*types.InterpretationRule, error)
	List(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, filter RuleFilter) ([]*types.InterpretationRule, error)
}

type interpretationRuleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInterpretationRuleRepo(db *gorm.DB, baseLog *logger.Logger) InterpretationRuleRepo {
	repoLog := baseLog.With("repo", "InterpretationRuleRepo")
	return &interpretationRuleRepo{db: db, log: repoLog}
}

func (r *interpretationRuleRepo) Create(ctx context.Context, tx *gorm.DB, rules []*types.InterpretationRule) ([]*types.InterpretationRule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rules) == 0 {
		return []*types.InterpretationRule{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rules).Error; err != nil {
		return nil, apperr.NewStorage("interpretation rule create", err)
	}
	return rules, nil
}

func (r *interpretationRuleRepo) GetByID(ctx context.Context, tx *gorm.DB, companyID, ruleID uuid.UUID) (*types.InterpretationRule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var rule types.InterpretationRule
	err := transaction.WithContext(ctx).
		Where("id = ? AND company_id = ?", ruleID, companyID).
		First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.NewStorage("interpretation rule get", err)
	}
	return &rule, nil
}

func (r *interpretationRuleRepo) List(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, filter RuleFilter) ([]*types.InterpretationRule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).Where("company_id = ?", companyID)
	if filter.TestArea != nil {
		query = query.Where("test_area = ?", *filter.TestArea)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	var results []*types.InterpretationRule
	if err := query.
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, apperr.NewStorage("interpretation rule list", err)
	}
	return results, nil
}
