package unitofwork

import (
	"context"

	"autoideas-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	WorkshopRepository() contract.WorkshopRepository
	ThemeRepository() contract.ThemeRepository
	ProcessedIdeaRepository() contract.ProcessedIdeaRepository
	DeadLetterRepository() contract.DeadLetterRepository
}
