package contract

import (
	"context"

	"pivot-graph-be/internal/entity"
)

// GraphLoader moves entities of one session's graph between working memory
// and storage. Every method is idempotent for a given id set.
type GraphLoader interface {
	App() *entity.App

	// Load* return the entities, bringing them into working memory first
	// when only storage has them.
	LoadUsersById(ctx context.Context, ids []string) ([]*entity.User, error)
	LoadInvestigationsById(ctx context.Context, ids []string) ([]*entity.Investigation, error)
	LoadPivotsById(ctx context.Context, ids []string) ([]*entity.Pivot, error)

	// Unload* drop entities from working memory only.
	UnloadInvestigationsById(ctx context.Context, ids []string) error
	UnloadPivotsById(ctx context.Context, ids []string) error

	// Persist* write the working-memory state to storage.
	PersistUsersById(ctx context.Context, ids []string) error
	PersistInvestigationsById(ctx context.Context, ids []string) error
	PersistPivotsById(ctx context.Context, ids []string) error

	// Unlink* delete entities from working memory and storage.
	UnlinkInvestigationsById(ctx context.Context, ids []string) ([]*entity.Investigation, error)
	UnlinkPivotsById(ctx context.Context, ids []string) error

	// ReferencedPivots returns the subset of pivotIDs still listed by an
	// investigation outside skip, whether loaded or only stored.
	ReferencedPivots(ctx context.Context, pivotIDs, skip []string) (map[string]bool, error)
}

// GraphLoaderFactory binds a loader to a session's graph.
type GraphLoaderFactory interface {
	ForApp(app *entity.App) GraphLoader
}
