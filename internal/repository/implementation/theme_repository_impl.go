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

type ThemeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ThemeMapper
}

func NewThemeRepository(db *gorm.DB) contract.ThemeRepository {
	return &ThemeRepositoryImpl{
		db:     db,
		mapper: mapper.NewThemeMapper(),
	}
}

func (r *ThemeRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ThemeRepositoryImpl) Create(ctx context.Context, theme *entity.Theme) error {
	m := r.mapper.ToModel(theme)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*theme = *r.mapper.ToEntity(m)
	return nil
}

func (r *ThemeRepositoryImpl) Update(ctx context.Context, theme *entity.Theme) error {
	m := r.mapper.ToModel(theme)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*theme = *r.mapper.ToEntity(m)
	return nil
}

func (r *ThemeRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Theme, error) {
	var m model.Theme
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ThemeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Theme, error) {
	var models []*model.Theme
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ThemeRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Theme{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
