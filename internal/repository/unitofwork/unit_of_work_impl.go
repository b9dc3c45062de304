package unitofwork

import (
	"context"
	"fmt"

	"autoideas-be/internal/repository/contract"
	"autoideas-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // active transaction, nil when operating on the base handle
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) WorkshopRepository() contract.WorkshopRepository {
	return implementation.NewWorkshopRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ThemeRepository() contract.ThemeRepository {
	return implementation.NewThemeRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ProcessedIdeaRepository() contract.ProcessedIdeaRepository {
	return implementation.NewProcessedIdeaRepository(u.getDB())
}

func (u *UnitOfWorkImpl) DeadLetterRepository() contract.DeadLetterRepository {
	return implementation.NewDeadLetterRepository(u.getDB())
}
