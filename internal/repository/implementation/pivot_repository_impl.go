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

type PivotRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PivotMapper
}

func NewPivotRepository(db *gorm.DB) contract.PivotRepository {
	return &PivotRepositoryImpl{
		db:     db,
		mapper: mapper.NewPivotMapper(),
	}
}

func (r *PivotRepositoryImpl) Upsert(ctx context.Context, pivot *entity.Pivot) error {
	m, err := r.mapper.ToModel(pivot)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(m).Error
}

func (r *PivotRepositoryImpl) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return specification.ByIDs{IDs: ids}.Apply(r.db.WithContext(ctx)).Delete(&model.Pivot{}).Error
}

func (r *PivotRepositoryImpl) FindByIDs(ctx context.Context, ids []string) ([]*entity.Pivot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []*model.Pivot
	byIDs := specification.ByIDs{IDs: ids}
	if err := byIDs.Apply(r.db.WithContext(ctx)).Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models)
}
