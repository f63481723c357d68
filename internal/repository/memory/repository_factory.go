package memory

import (
	"context"

	"pivot-graph-be/internal/repository/contract"
	"pivot-graph-be/internal/repository/unitofwork"

	"github.com/patrickmn/go-cache"
)

// RepositoryFactory hands out units of work over one shared go-cache store.
// It stands in for Postgres when no database is configured.
type RepositoryFactory struct {
	cache *cache.Cache
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{cache: cache.New(cache.NoExpiration, 0)}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{cache: f.cache}
}

// unitOfWork applies writes immediately; Rollback cannot undo them.
type unitOfWork struct {
	cache *cache.Cache
}

func (u *unitOfWork) Begin(ctx context.Context) error { return nil }
func (u *unitOfWork) Commit() error                   { return nil }
func (u *unitOfWork) Rollback() error                 { return nil }

func (u *unitOfWork) UserRepository() contract.UserRepository {
	return NewUserRepository(u.cache)
}

func (u *unitOfWork) InvestigationRepository() contract.InvestigationRepository {
	return NewInvestigationRepository(u.cache)
}

func (u *unitOfWork) PivotRepository() contract.PivotRepository {
	return NewPivotRepository(u.cache)
}
