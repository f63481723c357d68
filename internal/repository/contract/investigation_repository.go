package contract

import (
	"context"

	"pivot-graph-be/internal/entity"
)

type InvestigationRepository interface {
	Upsert(ctx context.Context, investigation *entity.Investigation) error
	Delete(ctx context.Context, ids []string) error
	FindByIDs(ctx context.Context, ids []string) ([]*entity.Investigation, error)
	// FindListingPivots returns the stored investigations whose pivot list
	// holds any of pivotIDs.
	FindListingPivots(ctx context.Context, pivotIDs []string) ([]*entity.Investigation, error)
}
