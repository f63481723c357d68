package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"pivot-graph-be/internal/entity"
	"pivot-graph-be/internal/pkg/logger"
	"pivot-graph-be/internal/repository/contract"
	"pivot-graph-be/internal/repository/loader"
	"pivot-graph-be/internal/repository/memory"
	"pivot-graph-be/internal/repository/unitofwork"
	"pivot-graph-be/pkg/events"
	"pivot-graph-be/pkg/jsongraph"
	"pivot-graph-be/pkg/pivot/template"
	"pivot-graph-be/pkg/store"

	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type fakeExecutor struct {
	transport string
	rows      []template.Row
	err       error

	mu      sync.Mutex
	queries []template.Query
}

func (e *fakeExecutor) Transport() string { return e.transport }

func (e *fakeExecutor) Execute(_ context.Context, q template.Query) ([]template.Row, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queries = append(e.queries, q)
	return e.rows, e.err
}

type fixture struct {
	ctx       context.Context
	factory   *memory.RepositoryFactory
	loaders   contract.GraphLoaderFactory
	publisher *recordingPublisher
	svc       IInvestigationService
	sess      *store.Session
	user      *entity.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	factory := memory.NewRepositoryFactory()
	pub := &recordingPublisher{}
	loaders := loader.NewGraphLoaderFactory(factory)

	app := entity.NewApp("Pivots", "")
	user := entity.NewUser("admin")
	app.PutUser(user)
	app.CurrentUser = jsongraph.NewRef(jsongraph.UsersByID, user.ID)

	return &fixture{
		ctx:       context.Background(),
		factory:   factory,
		loaders:   loaders,
		publisher: pub,
		svc:       NewInvestigationService(loaders, pub, logger.NewNopLogger()),
		sess:      store.NewSession("session-1", app),
		user:      user,
	}
}

// create adds an investigation with extra pivots beyond the initial one.
func (f *fixture) create(t *testing.T, extraPivots int) *entity.Investigation {
	t.Helper()
	res, err := f.svc.Create(f.ctx, f.sess, f.user.ID)
	require.NoError(t, err)
	for i := 0; i < extraPivots; i++ {
		_, _, err := f.svc.InsertPivot(f.ctx, f.sess, res.Investigation.ID, -1)
		require.NoError(t, err)
	}
	return res.Investigation
}

func (f *fixture) storedPivots(t *testing.T, ids ...string) []*entity.Pivot {
	t.Helper()
	found, err := f.factory.NewUnitOfWork(f.ctx).PivotRepository().FindByIDs(f.ctx, ids)
	require.NoError(t, err)
	return found
}

var errStorageDown = errors.New("storage down")

// brokenDeletes wraps a memory store whose investigation deletes fail.
type brokenDeletes struct {
	*memory.RepositoryFactory
}

func (f brokenDeletes) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return brokenDeletesUoW{f.RepositoryFactory.NewUnitOfWork(ctx)}
}

type brokenDeletesUoW struct {
	unitofwork.UnitOfWork
}

func (u brokenDeletesUoW) InvestigationRepository() contract.InvestigationRepository {
	return brokenDeletesRepo{u.UnitOfWork.InvestigationRepository()}
}

type brokenDeletesRepo struct {
	contract.InvestigationRepository
}

func (brokenDeletesRepo) Delete(context.Context, []string) error { return errStorageDown }
