package loader

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"pivot-graph-be/internal/entity"
	"pivot-graph-be/internal/repository/contract"
	"pivot-graph-be/internal/repository/unitofwork"
)

// GraphLoader keeps one session's App in step with storage. The mutex guards
// the App's collections while a batch is fanned out over the loader.
type GraphLoader struct {
	app     *entity.App
	factory unitofwork.RepositoryFactory
	mu      sync.Mutex
}

type GraphLoaderFactory struct {
	factory unitofwork.RepositoryFactory
}

func NewGraphLoaderFactory(factory unitofwork.RepositoryFactory) contract.GraphLoaderFactory {
	return &GraphLoaderFactory{factory: factory}
}

func (f *GraphLoaderFactory) ForApp(app *entity.App) contract.GraphLoader {
	return NewGraphLoader(app, f.factory)
}

// NewGraphLoader binds a loader to app. A nil factory keeps everything in
// working memory.
func NewGraphLoader(app *entity.App, factory unitofwork.RepositoryFactory) *GraphLoader {
	return &GraphLoader{app: app, factory: factory}
}

func (l *GraphLoader) App() *entity.App {
	return l.app
}

func (l *GraphLoader) LoadUsersById(ctx context.Context, ids []string) ([]*entity.User, error) {
	l.mu.Lock()
	missing := absent(ids, l.app.UsersById)
	l.mu.Unlock()

	if len(missing) > 0 && l.factory != nil {
		found, err := l.factory.NewUnitOfWork(ctx).UserRepository().FindByIDs(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("load users: %w", err)
		}
		l.mu.Lock()
		for _, u := range found {
			l.app.PutUser(u)
		}
		l.mu.Unlock()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*entity.User, 0, len(ids))
	for _, id := range ids {
		u, err := l.app.User(id)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (l *GraphLoader) LoadInvestigationsById(ctx context.Context, ids []string) ([]*entity.Investigation, error) {
	l.mu.Lock()
	missing := absent(ids, l.app.InvestigationsById)
	l.mu.Unlock()

	if len(missing) > 0 && l.factory != nil {
		found, err := l.factory.NewUnitOfWork(ctx).InvestigationRepository().FindByIDs(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("load investigations: %w", err)
		}
		l.mu.Lock()
		for _, inv := range found {
			l.app.PutInvestigation(inv)
		}
		l.mu.Unlock()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*entity.Investigation, 0, len(ids))
	for _, id := range ids {
		inv, err := l.app.Investigation(id)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}

func (l *GraphLoader) LoadPivotsById(ctx context.Context, ids []string) ([]*entity.Pivot, error) {
	l.mu.Lock()
	missing := absent(ids, l.app.PivotsById)
	l.mu.Unlock()

	if len(missing) > 0 && l.factory != nil {
		found, err := l.factory.NewUnitOfWork(ctx).PivotRepository().FindByIDs(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("load pivots: %w", err)
		}
		l.mu.Lock()
		l.app.PutPivots(found...)
		l.mu.Unlock()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*entity.Pivot, 0, len(ids))
	for _, id := range ids {
		p, err := l.app.Pivot(id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (l *GraphLoader) UnloadInvestigationsById(ctx context.Context, ids []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		delete(l.app.InvestigationsById, id)
	}
	return nil
}

func (l *GraphLoader) UnloadPivotsById(ctx context.Context, ids []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		delete(l.app.PivotsById, id)
	}
	return nil
}

func (l *GraphLoader) PersistUsersById(ctx context.Context, ids []string) error {
	l.mu.Lock()
	users := make([]*entity.User, 0, len(ids))
	for _, id := range ids {
		u, err := l.app.User(id)
		if err != nil {
			l.mu.Unlock()
			return err
		}
		users = append(users, u)
	}
	l.mu.Unlock()

	return l.inTx(ctx, func(uow unitofwork.UnitOfWork) error {
		repo := uow.UserRepository()
		for _, u := range users {
			if err := repo.Upsert(ctx, u); err != nil {
				return fmt.Errorf("persist user %s: %w", u.ID, err)
			}
		}
		return nil
	})
}

func (l *GraphLoader) PersistInvestigationsById(ctx context.Context, ids []string) error {
	l.mu.Lock()
	invs := make([]*entity.Investigation, 0, len(ids))
	for _, id := range ids {
		inv, err := l.app.Investigation(id)
		if err != nil {
			l.mu.Unlock()
			return err
		}
		invs = append(invs, inv)
	}
	l.mu.Unlock()

	return l.inTx(ctx, func(uow unitofwork.UnitOfWork) error {
		repo := uow.InvestigationRepository()
		for _, inv := range invs {
			if err := repo.Upsert(ctx, inv); err != nil {
				return fmt.Errorf("persist investigation %s: %w", inv.ID, err)
			}
		}
		return nil
	})
}

func (l *GraphLoader) PersistPivotsById(ctx context.Context, ids []string) error {
	l.mu.Lock()
	pivots := make([]*entity.Pivot, 0, len(ids))
	for _, id := range ids {
		p, err := l.app.Pivot(id)
		if err != nil {
			l.mu.Unlock()
			return err
		}
		pivots = append(pivots, p)
	}
	l.mu.Unlock()

	return l.inTx(ctx, func(uow unitofwork.UnitOfWork) error {
		repo := uow.PivotRepository()
		for _, p := range pivots {
			if err := repo.Upsert(ctx, p); err != nil {
				return fmt.Errorf("persist pivot %s: %w", p.ID, err)
			}
		}
		return nil
	})
}

// UnlinkInvestigationsById returns the investigations it removed so callers
// can cascade to their pivots. Unknown ids are skipped. When storage fails
// the loaded investigations are put back.
func (l *GraphLoader) UnlinkInvestigationsById(ctx context.Context, ids []string) ([]*entity.Investigation, error) {
	l.mu.Lock()
	removed := make([]*entity.Investigation, 0, len(ids))
	missing := absent(ids, l.app.InvestigationsById)
	for _, id := range ids {
		if inv, ok := l.app.InvestigationsById[id]; ok {
			removed = append(removed, inv)
			delete(l.app.InvestigationsById, id)
		}
	}
	l.mu.Unlock()

	if l.factory == nil {
		return removed, nil
	}
	loaded := slices.Clone(removed)
	err := l.inTx(ctx, func(uow unitofwork.UnitOfWork) error {
		repo := uow.InvestigationRepository()
		stored, err := repo.FindByIDs(ctx, missing)
		if err != nil {
			return err
		}
		removed = append(removed, stored...)
		return repo.Delete(ctx, ids)
	})
	if err != nil {
		l.mu.Lock()
		for _, inv := range loaded {
			l.app.PutInvestigation(inv)
		}
		l.mu.Unlock()
		return nil, fmt.Errorf("unlink investigations: %w", err)
	}
	return removed, nil
}

func (l *GraphLoader) UnlinkPivotsById(ctx context.Context, ids []string) error {
	if err := l.UnloadPivotsById(ctx, ids); err != nil {
		return err
	}
	if l.factory == nil {
		return nil
	}
	err := l.inTx(ctx, func(uow unitofwork.UnitOfWork) error {
		return uow.PivotRepository().Delete(ctx, ids)
	})
	if err != nil {
		return fmt.Errorf("unlink pivots: %w", err)
	}
	return nil
}

func (l *GraphLoader) inTx(ctx context.Context, fn func(uow unitofwork.UnitOfWork) error) error {
	if l.factory == nil {
		return nil
	}
	return unitofwork.Transact(ctx, l.factory, fn)
}

func absent[T any](ids []string, present map[string]T) []string {
	var out []string
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// ReferencedPivots checks loaded investigations in working memory and the
// rest in storage. A stored row of a loaded investigation is ignored since
// working memory holds its current pivot list.
func (l *GraphLoader) ReferencedPivots(ctx context.Context, pivotIDs, skip []string) (map[string]bool, error) {
	referenced := make(map[string]bool)
	l.mu.Lock()
	for _, id := range pivotIDs {
		if l.app.PivotReferenced(id, skip) {
			referenced[id] = true
		}
	}
	l.mu.Unlock()

	if l.factory == nil {
		return referenced, nil
	}
	stored, err := l.factory.NewUnitOfWork(ctx).InvestigationRepository().FindListingPivots(ctx, pivotIDs)
	if err != nil {
		return nil, fmt.Errorf("find pivot referrers: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, inv := range stored {
		if _, loaded := l.app.InvestigationsById[inv.ID]; loaded || slices.Contains(skip, inv.ID) {
			continue
		}
		for _, id := range pivotIDs {
			if inv.HasPivot(id) {
				referenced[id] = true
			}
		}
	}
	return referenced, nil
}

var _ contract.GraphLoader = (*GraphLoader)(nil)
