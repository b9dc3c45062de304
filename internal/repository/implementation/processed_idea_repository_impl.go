package implementation

import (
	"context"
	"errors"

	"autoideas-be/internal/entity"
	"autoideas-be/internal/mapper"
	"autoideas-be/internal/model"
	"autoideas-be/internal/repository/contract"
	"autoideas-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ProcessedIdeaRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.IdeaMapper
}

func NewProcessedIdeaRepository(db *gorm.DB) contract.ProcessedIdeaRepository {
	return &ProcessedIdeaRepositoryImpl{
		db:     db,
		mapper: mapper.NewIdeaMapper(),
	}
}

func (r *ProcessedIdeaRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ProcessedIdeaRepositoryImpl) Create(ctx context.Context, idea *entity.ProcessedIdea) error {
	m := r.mapper.ToModel(idea)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*idea = *r.mapper.ToEntity(m)
	return nil
}

func (r *ProcessedIdeaRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProcessedIdea, error) {
	var m model.ProcessedIdea
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ProcessedIdeaRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProcessedIdea, error) {
	var models []*model.ProcessedIdea
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ProcessedIdeaRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ProcessedIdea{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
