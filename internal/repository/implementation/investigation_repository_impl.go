package implementation

import (
	"context"

	"pivot-graph-be/internal/entity"
	"pivot-graph-be/internal/mapper"
	"pivot-graph-be/internal/model"
	"pivot-graph-be/internal/repository/contract"
	"pivot-graph-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvestigationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InvestigationMapper
}

func NewInvestigationRepository(db *gorm.DB) contract.InvestigationRepository {
	return &InvestigationRepositoryImpl{
		db:     db,
		mapper: mapper.NewInvestigationMapper(),
	}
}

func (r *InvestigationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *InvestigationRepositoryImpl) Upsert(ctx context.Context, investigation *entity.Investigation) error {
	m := r.mapper.ToModel(investigation)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(m).Error
}

func (r *InvestigationRepositoryImpl) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.applySpecifications(r.db.WithContext(ctx), specification.ByIDs{IDs: ids}).Delete(&model.Investigation{}).Error
}

func (r *InvestigationRepositoryImpl) FindByIDs(ctx context.Context, ids []string) ([]*entity.Investigation, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []*model.Investigation
	query := r.applySpecifications(r.db.WithContext(ctx), specification.ByIDs{IDs: ids})
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *InvestigationRepositoryImpl) FindListingPivots(ctx context.Context, pivotIDs []string) ([]*entity.Investigation, error) {
	if len(pivotIDs) == 0 {
		return nil, nil
	}
	var models []*model.Investigation
	query := r.applySpecifications(r.db.WithContext(ctx), specification.ListsAnyPivot{PivotIDs: pivotIDs})
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
