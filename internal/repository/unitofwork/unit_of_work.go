// Package unitofwork groups the graph repositories behind one transaction.
package unitofwork

import (
	"context"
	"errors"

	"pivot-graph-be/internal/repository/contract"
)

var (
	ErrTxActive = errors.New("unitofwork: transaction already started")
	ErrNoTx     = errors.New("unitofwork: no transaction")
)

type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

// UnitOfWork hands out repositories bound to its transaction once Begin
// has been called, and to the plain connection otherwise.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	InvestigationRepository() contract.InvestigationRepository
	PivotRepository() contract.PivotRepository
}

// Transact runs fn inside a fresh unit of work, committing when fn
// succeeds and rolling back otherwise.
func Transact(ctx context.Context, factory RepositoryFactory, fn func(uow UnitOfWork) error) error {
	uow := factory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := fn(uow); err != nil {
		if rbErr := uow.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return uow.Commit()
}
