package implementation

import (
	"context"

	"autoideas-be/internal/entity"
	"autoideas-be/internal/mapper"
	"autoideas-be/internal/model"
	"autoideas-be/internal/repository/contract"
	"autoideas-be/internal/repository/specification"

	"gorm.io/gorm"
)

type DeadLetterRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DeadLetterMapper
}

func NewDeadLetterRepository(db *gorm.DB) contract.DeadLetterRepository {
	return &DeadLetterRepositoryImpl{
		db:     db,
		mapper: mapper.NewDeadLetterMapper(),
	}
}

func (r *DeadLetterRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DeadLetterRepositoryImpl) Create(ctx context.Context, job *entity.DeadLetterJob) error {
	m := r.mapper.ToModel(job)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*job = *r.mapper.ToEntity(m)
	return nil
}

func (r *DeadLetterRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DeadLetterJob, error) {
	var models []*model.DeadLetterJob
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DeadLetterRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.DeadLetterJob{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
