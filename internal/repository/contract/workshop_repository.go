package contract

import (
	"context"

	"autoideas-be/internal/entity"
	"autoideas-be/internal/repository/specification"
)

type WorkshopRepository interface {
	Create(ctx context.Context, workshop *entity.Workshop) error
	Update(ctx context.Context, workshop *entity.Workshop) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Workshop, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Workshop, error)
}
