package contract

import (
	"context"

	"autoideas-be/internal/entity"
	"autoideas-be/internal/repository/specification"
)

type DeadLetterRepository interface {
	Create(ctx context.Context, job *entity.DeadLetterJob) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DeadLetterJob, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
