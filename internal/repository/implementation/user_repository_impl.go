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

type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *UserRepositoryImpl) Upsert(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(r.mapper.ToModel(user)).Error
}

func (r *UserRepositoryImpl) FindByIDs(ctx context.Context, ids []string) ([]*entity.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []*model.User
	byIDs := specification.ByIDs{IDs: ids}
	if err := byIDs.Apply(r.db.WithContext(ctx)).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.User, 0, len(models))
	for _, m := range models {
		out = append(out, r.mapper.ToEntity(m))
	}
	return out, nil
}
