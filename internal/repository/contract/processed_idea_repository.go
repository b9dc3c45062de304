package contract

import (
	"context"

	"autoideas-be/internal/entity"
	"autoideas-be/internal/repository/specification"
)

type ProcessedIdeaRepository interface {
	Create(ctx context.Context, idea *entity.ProcessedIdea) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProcessedIdea, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProcessedIdea, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
