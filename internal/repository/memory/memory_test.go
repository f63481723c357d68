package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"pivot-graph-be/internal/entity"
	"pivot-graph-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository(t *testing.T) {
	repo := NewSessionRepository(time.Minute)
	sess := store.NewSession("s1", entity.NewApp("Pivots", ""))

	repo.Save(sess)
	got, ok := repo.Get("s1")
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, repo.Count())

	repo.Delete("s1")
	_, ok = repo.Get("s1")
	assert.False(t, ok)
	assert.Equal(t, 0, repo.Count())
}

func TestSessionRepositoryOnEvicted(t *testing.T) {
	repo := NewSessionRepository(time.Minute)

	var (
		mu      sync.Mutex
		evicted []string
	)
	repo.OnEvicted(func(id string) {
		mu.Lock()
		evicted = append(evicted, id)
		mu.Unlock()
	})

	repo.Save(store.NewSession("s1", entity.NewApp("Pivots", "")))
	repo.Delete("s1")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"s1"}, evicted)
}

func TestStoredEntitiesAreCopies(t *testing.T) {
	ctx := context.Background()
	uow := NewRepositoryFactory().NewUnitOfWork(ctx)

	pivot := entity.NewPivot(entity.PivotField{Name: entity.FieldSearch, Value: "error"})
	require.NoError(t, uow.PivotRepository().Upsert(ctx, pivot))
	pivot.Fields.Set(entity.FieldSearch, "changed")

	found, err := uow.PivotRepository().FindByIDs(ctx, []string{pivot.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	search, _ := found[0].Fields.Get(entity.FieldSearch)
	assert.Equal(t, "error", search)
	assert.NotSame(t, pivot, found[0])
}

func TestInvestigationRoundTripAndDelete(t *testing.T) {
	ctx := context.Background()
	uow := NewRepositoryFactory().NewUnitOfWork(ctx)
	repo := uow.InvestigationRepository()

	inv := entity.NewInvestigation("Triage", "p1", "p2")
	require.NoError(t, repo.Upsert(ctx, inv))

	found, err := repo.FindByIDs(ctx, []string{inv.ID})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Triage", found[0].Name)
	assert.Equal(t, []string{"p1", "p2"}, found[0].PivotIDs())

	require.NoError(t, repo.Delete(ctx, []string{inv.ID}))
	found, err = repo.FindByIDs(ctx, []string{inv.ID})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestFindListingPivots(t *testing.T) {
	ctx := context.Background()
	uow := NewRepositoryFactory().NewUnitOfWork(ctx)
	repo := uow.InvestigationRepository()

	a := entity.NewInvestigation("A", "p1", "p2")
	b := entity.NewInvestigation("B", "p3")
	require.NoError(t, repo.Upsert(ctx, a))
	require.NoError(t, repo.Upsert(ctx, b))
	require.NoError(t, uow.UserRepository().Upsert(ctx, entity.NewUser("admin")))

	found, err := repo.FindListingPivots(ctx, []string{"p2", "p9"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, a.ID, found[0].ID)

	found, err = repo.FindListingPivots(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestUserActiveInvestigationSurvivesStorage(t *testing.T) {
	ctx := context.Background()
	uow := NewRepositoryFactory().NewUnitOfWork(ctx)

	user := entity.NewUser("admin")
	user.AddInvestigation("a")
	user.AddInvestigation("b")
	user.Activate("a")
	require.NoError(t, uow.UserRepository().Upsert(ctx, user))

	found, err := uow.UserRepository().FindByIDs(ctx, []string{user.ID})
	require.NoError(t, err)
	require.Len(t, found, 1)
	active, ok := found[0].ActiveID()
	require.True(t, ok)
	assert.Equal(t, "a", active)
	assert.Len(t, found[0].Investigations, 2)
}
