package mapper

import (
	"autoideas-be/internal/entity"
	"autoideas-be/internal/model"
)

type IdeaMapper struct{}

func NewIdeaMapper() *IdeaMapper {
	return &IdeaMapper{}
}

func (m *IdeaMapper) ToEntity(i *model.ProcessedIdea) *entity.ProcessedIdea {
	if i == nil {
		return nil
	}
	return &entity.ProcessedIdea{
		Id:            i.Id,
		JobId:         i.JobId,
		SessionId:     i.SessionId,
		WorkshopId:    i.WorkshopId,
		Nickname:      i.Nickname,
		QuestionId:    i.QuestionId,
		Title:         i.Title,
		CanonicalText: i.CanonicalText,
		Category:      i.Category,
		Sentiment:     i.Sentiment,
		ThemeId:       i.ThemeId,
		CardRef:       i.CardRef,
		CreatedAt:     i.CreatedAt,
	}
}

func (m *IdeaMapper) ToModel(i *entity.ProcessedIdea) *model.ProcessedIdea {
	if i == nil {
		return nil
	}
	return &model.ProcessedIdea{
		Id:            i.Id,
		JobId:         i.JobId,
		SessionId:     i.SessionId,
		WorkshopId:    i.WorkshopId,
		Nickname:      i.Nickname,
		QuestionId:    i.QuestionId,
		Title:         i.Title,
		CanonicalText: i.CanonicalText,
		Category:      i.Category,
		Sentiment:     i.Sentiment,
		ThemeId:       i.ThemeId,
		CardRef:       i.CardRef,
		CreatedAt:     i.CreatedAt,
	}
}

func (m *IdeaMapper) ToEntities(models []*model.ProcessedIdea) []*entity.ProcessedIdea {
	out := make([]*entity.ProcessedIdea, 0, len(models))
	for _, i := range models {
		out = append(out, m.ToEntity(i))
	}
	return out
}
