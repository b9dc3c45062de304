package mapper

import (
	"time"

	"autoideas-be/internal/entity"
	"autoideas-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ThemeMapper struct{}

func NewThemeMapper() *ThemeMapper {
	return &ThemeMapper{}
}

func (m *ThemeMapper) ToEntity(t *model.Theme) *entity.Theme {
	if t == nil {
		return nil
	}

	var updatedAt *time.Time
	if !t.UpdatedAt.IsZero() {
		u := t.UpdatedAt
		updatedAt = &u
	}

	return &entity.Theme{
		Id:          t.Id,
		WorkshopId:  t.WorkshopId,
		Label:       t.Label,
		Summary:     t.Summary,
		Centroid:    t.Centroid.Slice(),
		SampleCount: t.SampleCount,
		IsCatchAll:  t.IsCatchAll,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *ThemeMapper) ToModel(t *entity.Theme) *model.Theme {
	if t == nil {
		return nil
	}

	out := &model.Theme{
		Id:          t.Id,
		WorkshopId:  t.WorkshopId,
		Label:       t.Label,
		Summary:     t.Summary,
		Centroid:    pgvector.NewVector(t.Centroid),
		SampleCount: t.SampleCount,
		IsCatchAll:  t.IsCatchAll,
		CreatedAt:   t.CreatedAt,
	}
	if t.UpdatedAt != nil {
		out.UpdatedAt = *t.UpdatedAt
	}
	return out
}

func (m *ThemeMapper) ToEntities(models []*model.Theme) []*entity.Theme {
	out := make([]*entity.Theme, 0, len(models))
	for _, t := range models {
		out = append(out, m.ToEntity(t))
	}
	return out
}
