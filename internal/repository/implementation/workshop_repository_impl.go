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

type WorkshopRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkshopMapper
}

func NewWorkshopRepository(db *gorm.DB) contract.WorkshopRepository {
	return &WorkshopRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkshopMapper(),
	}
}

func (r *WorkshopRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *WorkshopRepositoryImpl) Create(ctx context.Context, workshop *entity.Workshop) error {
	m := r.mapper.ToModel(workshop)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*workshop = *r.mapper.ToEntity(m)
	return nil
}

func (r *WorkshopRepositoryImpl) Update(ctx context.Context, workshop *entity.Workshop) error {
	m := r.mapper.ToModel(workshop)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*workshop = *r.mapper.ToEntity(m)
	return nil
}

func (r *WorkshopRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Workshop, error) {
	var m model.Workshop
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *WorkshopRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Workshop, error) {
	var models []*model.Workshop
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
