package contract

import (
	"context"

	"pivot-graph-be/internal/entity"
)

type UserRepository interface {
	Upsert(ctx context.Context, user *entity.User) error
	FindByIDs(ctx context.Context, ids []string) ([]*entity.User, error)
}
