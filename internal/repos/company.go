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

type CompanyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, companies []*types.Company) ([]*types.Company, error)
	GetByID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) (*types.Company, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Company, error)
}

type companyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompanyRepo(db *gorm.DB, baseLog *logger.Logger) CompanyRepo {
	repoLog := baseLog.With("repo", "CompanyRepo")
	return &companyRepo{db: db, log: repoLog}
}

func (r *companyRepo) Create(ctx context.Context, tx *gorm.DB, companies []*types.Company) ([]*types.Company, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(companies) == 0 {
		return []*types.Company{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&companies).Error; err != nil {
		return nil, apperr.NewStorage("company create", err)
	}
	return companies, nil
}

func (r *companyRepo) GetByID(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) (*types.Company, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var company types.Company
	err := transaction.WithContext(ctx).
		Where("id = ?", companyID).
		First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.NewStorage("company get", err)
	}
	return &company, nil
}

func (r *companyRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Company, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Company
	if err := transaction.WithContext(ctx).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, apperr.NewStorage("company list", err)
	}
	return results, nil
}
