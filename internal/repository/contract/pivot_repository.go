package contract

import (
	"context"

	"pivot-graph-be/internal/entity"
)

type PivotRepository interface {
	Upsert(ctx context.Context, pivot *entity.Pivot) error
	Delete(ctx context.Context, ids []string) error
	FindByIDs(ctx context.Context, ids []string) ([]*entity.Pivot, error)
}
