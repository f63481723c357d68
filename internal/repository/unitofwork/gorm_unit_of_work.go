package unitofwork

import (
	"context"

	"pivot-graph-be/internal/repository/contract"
	"pivot-graph-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type gormFactory struct {
	db *gorm.DB
}

// NewRepositoryFactory returns units of work over Postgres.
func NewRepositoryFactory(db *gorm.DB) RepositoryFactory {
	return &gormFactory{db: db}
}

func (f *gormFactory) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return &gormUnitOfWork{db: f.db.WithContext(ctx)}
}

type gormUnitOfWork struct {
	db *gorm.DB
	tx *gorm.DB
}

func (u *gormUnitOfWork) conn() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *gormUnitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return ErrTxActive
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	u.tx = tx
	return nil
}

func (u *gormUnitOfWork) Commit() error {
	return u.end(func(tx *gorm.DB) *gorm.DB { return tx.Commit() })
}

func (u *gormUnitOfWork) Rollback() error {
	return u.end(func(tx *gorm.DB) *gorm.DB { return tx.Rollback() })
}

func (u *gormUnitOfWork) end(finish func(*gorm.DB) *gorm.DB) error {
	if u.tx == nil {
		return ErrNoTx
	}
	tx := u.tx
	u.tx = nil
	return finish(tx).Error
}

func (u *gormUnitOfWork) UserRepository() contract.UserRepository {
	return implementation.NewUserRepository(u.conn())
}

func (u *gormUnitOfWork) InvestigationRepository() contract.InvestigationRepository {
	return implementation.NewInvestigationRepository(u.conn())
}

func (u *gormUnitOfWork) PivotRepository() contract.PivotRepository {
	return implementation.NewPivotRepository(u.conn())
}
