package service

import (
	"context"

	"autoideas-be/internal/entity"
	"autoideas-be/internal/repository/specification"
	"autoideas-be/internal/repository/unitofwork"
	"autoideas-be/pkg/clustering"

	"github.com/google/uuid"
)

// themeStoreAdapter satisfies clustering.ThemeStore on top of the theme
// repository.
type themeStoreAdapter struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewThemeStore(uowFactory unitofwork.RepositoryFactory) clustering.ThemeStore {
	return &themeStoreAdapter{uowFactory: uowFactory}
}

func (a *themeStoreAdapter) ListByWorkshop(ctx context.Context, workshopID uuid.UUID) ([]*entity.Theme, error) {
	uow := a.uowFactory.NewUnitOfWork(ctx)
	return uow.ThemeRepository().FindAll(ctx,
		specification.ByWorkshopID{WorkshopID: workshopID},
		specification.OrderBy{Field: "created_at"},
	)
}

func (a *themeStoreAdapter) Create(ctx context.Context, theme *entity.Theme) (*entity.Theme, error) {
	uow := a.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ThemeRepository().Create(ctx, theme); err != nil {
		return nil, err
	}
	return theme, nil
}

func (a *themeStoreAdapter) Update(ctx context.Context, theme *entity.Theme) (*entity.Theme, error) {
	uow := a.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ThemeRepository().Update(ctx, theme); err != nil {
		return nil, err
	}
	return theme, nil
}
