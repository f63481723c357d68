package service

import (
	"context"
	"testing"
	"time"

	"pivot-graph-be/internal/entity"
	"pivot-graph-be/internal/pkg/logger"
	"pivot-graph-be/internal/repository/loader"
	"pivot-graph-be/internal/repository/memory"
	"pivot-graph-be/pkg/jsongraph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionFixture struct {
	factory *memory.RepositoryFactory
	svc     ISessionService
}

func newSessionFixture() *sessionFixture {
	factory := memory.NewRepositoryFactory()
	loaders := loader.NewGraphLoaderFactory(factory)
	log := logger.NewNopLogger()
	investigations := NewInvestigationService(loaders, &recordingPublisher{}, log)
	return &sessionFixture{
		factory: factory,
		svc: NewSessionService(
			memory.NewSessionRepository(time.Minute),
			loaders,
			investigations,
			"Pivots",
			"http://viewer",
			log,
		),
	}
}

func TestOpenFreshSession(t *testing.T) {
	f := newSessionFixture()

	sess, err := f.svc.Open(context.Background(), "", "")
	require.NoError(t, err)

	user, inv, err := sess.App.ActiveInvestigation()
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Name)
	assert.Len(t, inv.Pivots, 1)
	assert.Equal(t, "Pivots", sess.App.Title)
	assert.Equal(t, "http://viewer", sess.App.URL)
	assert.Equal(t, 1, f.svc.Count())
}

func TestOpenUnknownUserKeepsID(t *testing.T) {
	f := newSessionFixture()

	sess, err := f.svc.Open(context.Background(), "u-42", "carol")
	require.NoError(t, err)

	user, err := sess.App.Current()
	require.NoError(t, err)
	assert.Equal(t, "u-42", user.ID)
	assert.Equal(t, "carol", user.Name)
}

func TestOpenReloadsSavedGraph(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()
	uow := f.factory.NewUnitOfWork(ctx)

	pivot := entity.NewPivot(entity.PivotField{Name: entity.FieldSearch, Value: "error"})
	inv := entity.NewInvestigation("Saved", pivot.ID)
	user := entity.NewUser("dana")
	user.AddInvestigation(inv.ID)
	require.NoError(t, uow.PivotRepository().Upsert(ctx, pivot))
	require.NoError(t, uow.InvestigationRepository().Upsert(ctx, inv))
	require.NoError(t, uow.UserRepository().Upsert(ctx, user))

	sess, err := f.svc.Open(ctx, user.ID, "")
	require.NoError(t, err)

	_, active, err := sess.App.ActiveInvestigation()
	require.NoError(t, err)
	assert.Equal(t, "Saved", active.Name)
	loaded, err := sess.App.Pivot(pivot.ID)
	require.NoError(t, err)
	search, _ := loaded.Fields.Get(entity.FieldSearch)
	assert.Equal(t, "error", search)
}

func TestOpenDropsMissingActiveInvestigation(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	user := entity.NewUser("erin")
	user.AddInvestigation("ghost")
	require.NoError(t, f.factory.NewUnitOfWork(ctx).UserRepository().Upsert(ctx, user))

	sess, err := f.svc.Open(ctx, user.ID, "")
	require.NoError(t, err)

	current, err := sess.App.Current()
	require.NoError(t, err)
	assert.False(t, current.Owns("ghost"))
	require.Len(t, current.Investigations, 1)
	active, ok := current.ActiveID()
	require.True(t, ok)
	assert.Equal(t, current.Investigations[0].ID, active)
}

func TestSessionGetAndClose(t *testing.T) {
	f := newSessionFixture()

	sess, err := f.svc.Open(context.Background(), "", "")
	require.NoError(t, err)

	got, err := f.svc.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	f.svc.Close(sess.ID)
	_, err = f.svc.Get(sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0, f.svc.Count())
}

func TestSessionAppRefersToCurrentUser(t *testing.T) {
	f := newSessionFixture()

	sess, err := f.svc.Open(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, jsongraph.UsersByID, sess.App.CurrentUser.Collection)
}
