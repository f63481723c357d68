package loader

import (
	"context"
	"errors"
	"testing"

	"pivot-graph-be/internal/entity"
	"pivot-graph-be/internal/repository/memory"
	"pivot-graph-be/pkg/jsongraph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededLoader(t *testing.T) (*GraphLoader, *memory.RepositoryFactory, *entity.Investigation, *entity.Pivot) {
	t.Helper()
	ctx := context.Background()
	factory := memory.NewRepositoryFactory()

	pivot := entity.NewPivot(entity.PivotField{Name: entity.FieldMode, Value: "all"})
	inv := entity.NewInvestigation("Stored", pivot.ID)
	seed := entity.NewApp("Pivots", "")
	seed.PutInvestigation(inv)
	seed.PutPivots(pivot)

	writer := NewGraphLoader(seed, factory)
	require.NoError(t, writer.PersistPivotsById(ctx, []string{pivot.ID}))
	require.NoError(t, writer.PersistInvestigationsById(ctx, []string{inv.ID}))

	return NewGraphLoader(entity.NewApp("Pivots", ""), factory), factory, inv, pivot
}

func TestLoadFromStorage(t *testing.T) {
	loader, _, inv, pivot := seededLoader(t)
	ctx := context.Background()

	invs, err := loader.LoadInvestigationsById(ctx, []string{inv.ID})
	require.NoError(t, err)
	assert.Equal(t, "Stored", invs[0].Name)

	pivots, err := loader.LoadPivotsById(ctx, invs[0].PivotIDs())
	require.NoError(t, err)
	assert.Equal(t, "all", pivots[0].Mode())

	again, err := loader.LoadInvestigationsById(ctx, []string{inv.ID})
	require.NoError(t, err)
	assert.Same(t, invs[0], again[0], "loaded entities are served from working memory")

	_, ok := loader.App().PivotsById[pivot.ID]
	assert.True(t, ok)
}

func TestLoadMissing(t *testing.T) {
	loader, _, _, _ := seededLoader(t)

	_, err := loader.LoadUsersById(context.Background(), []string{"nobody"})

	var missing *jsongraph.MissingReferenceError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, jsongraph.UsersByID, missing.Ref.Collection)
}

func TestUnloadKeepsStorage(t *testing.T) {
	loader, _, inv, _ := seededLoader(t)
	ctx := context.Background()

	_, err := loader.LoadInvestigationsById(ctx, []string{inv.ID})
	require.NoError(t, err)
	require.NoError(t, loader.UnloadInvestigationsById(ctx, []string{inv.ID}))
	assert.Empty(t, loader.App().InvestigationsById)

	invs, err := loader.LoadInvestigationsById(ctx, []string{inv.ID})
	require.NoError(t, err)
	assert.Equal(t, inv.ID, invs[0].ID)
}

func TestUnlinkInvestigationsReturnsStoredOnes(t *testing.T) {
	loader, factory, inv, _ := seededLoader(t)
	ctx := context.Background()

	removed, err := loader.UnlinkInvestigationsById(ctx, []string{inv.ID, "unknown"})
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, inv.ID, removed[0].ID)

	stored, err := factory.NewUnitOfWork(ctx).InvestigationRepository().FindByIDs(ctx, []string{inv.ID})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestUnlinkPivots(t *testing.T) {
	loader, factory, _, pivot := seededLoader(t)
	ctx := context.Background()

	_, err := loader.LoadPivotsById(ctx, []string{pivot.ID})
	require.NoError(t, err)
	require.NoError(t, loader.UnlinkPivotsById(ctx, []string{pivot.ID}))

	_, err = loader.App().Pivot(pivot.ID)
	assert.Error(t, err)
	stored, err := factory.NewUnitOfWork(ctx).PivotRepository().FindByIDs(ctx, []string{pivot.ID})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestLoaderWithoutStorage(t *testing.T) {
	app := entity.NewApp("Pivots", "")
	pivot := entity.NewPivot()
	app.PutPivots(pivot)
	loader := NewGraphLoader(app, nil)
	ctx := context.Background()

	require.NoError(t, loader.PersistPivotsById(ctx, []string{pivot.ID}))
	require.NoError(t, loader.UnlinkPivotsById(ctx, []string{pivot.ID}))
	_, err := loader.LoadPivotsById(ctx, []string{pivot.ID})
	assert.Error(t, err)
}
