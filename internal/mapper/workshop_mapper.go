package mapper

import (
	"encoding/json"
	"time"

	"autoideas-be/internal/entity"
	"autoideas-be/internal/model"

	"gorm.io/datatypes"
)

type WorkshopMapper struct{}

func NewWorkshopMapper() *WorkshopMapper {
	return &WorkshopMapper{}
}

func (m *WorkshopMapper) ToEntity(w *model.Workshop) *entity.Workshop {
	if w == nil {
		return nil
	}

	var questions []entity.WorkshopQuestion
	if len(w.Questions) > 0 {
		_ = json.Unmarshal(w.Questions, &questions)
	}

	styleRules := map[string]string{}
	if len(w.StyleRules) > 0 {
		_ = json.Unmarshal(w.StyleRules, &styleRules)
	}

	var updatedAt *time.Time
	if !w.UpdatedAt.IsZero() {
		t := w.UpdatedAt
		updatedAt = &t
	}

	return &entity.Workshop{
		Id:                  w.Id,
		Name:                w.Name,
		Slug:                w.Slug,
		Status:              w.Status,
		BoardId:             w.BoardId,
		Questions:           questions,
		StyleRules:          styleRules,
		SimilarityThreshold: w.SimilarityThreshold,
		CatchAllLabel:       w.CatchAllLabel,
		RegionWidth:         w.RegionWidth,
		RegionHeight:        w.RegionHeight,
		CreatedAt:           w.CreatedAt,
		UpdatedAt:           updatedAt,
	}
}

func (m *WorkshopMapper) ToModel(w *entity.Workshop) *model.Workshop {
	if w == nil {
		return nil
	}

	questions, _ := json.Marshal(w.Questions)
	styleRules, _ := json.Marshal(w.StyleRules)

	out := &model.Workshop{
		Id:                  w.Id,
		Name:                w.Name,
		Slug:                w.Slug,
		Status:              w.Status,
		BoardId:             w.BoardId,
		Questions:           datatypes.JSON(questions),
		StyleRules:          datatypes.JSON(styleRules),
		SimilarityThreshold: w.SimilarityThreshold,
		CatchAllLabel:       w.CatchAllLabel,
		RegionWidth:         w.RegionWidth,
		RegionHeight:        w.RegionHeight,
		CreatedAt:           w.CreatedAt,
	}
	if w.UpdatedAt != nil {
		out.UpdatedAt = *w.UpdatedAt
	}
	return out
}

func (m *WorkshopMapper) ToEntities(models []*model.Workshop) []*entity.Workshop {
	out := make([]*entity.Workshop, 0, len(models))
	for _, w := range models {
		out = append(out, m.ToEntity(w))
	}
	return out
}
