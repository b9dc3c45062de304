package contract

import (
	"context"

	"autoideas-be/internal/entity"
	"autoideas-be/internal/repository/specification"
)

type ThemeRepository interface {
	Create(ctx context.Context, theme *entity.Theme) error
	Update(ctx context.Context, theme *entity.Theme) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Theme, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Theme, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
