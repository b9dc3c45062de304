package service

import (
	"context"

	"autoideas-be/internal/dto"
	"autoideas-be/internal/pkg/serverutils"
	"autoideas-be/internal/repository/specification"
	"autoideas-be/internal/repository/unitofwork"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// IWorkshopService is the facilitator read surface: workshop details, theme
// breakdown, processed ideas, and the dead-letter list.
type IWorkshopService interface {
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowWorkshopResponse, error)
	Themes(ctx context.Context, workshopID uuid.UUID) ([]*dto.ThemeResponse, error)
	Ideas(ctx context.Context, workshopID uuid.UUID, limit, offset int) ([]*dto.IdeaResponse, error)
	DeadLetters(ctx context.Context, workshopID uuid.UUID) ([]*dto.DeadLetterResponse, error)
}

type workshopService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewWorkshopService(uowFactory unitofwork.RepositoryFactory) IWorkshopService {
	return &workshopService{uowFactory: uowFactory}
}

func (s *workshopService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowWorkshopResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	workshop, err := uow.WorkshopRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if workshop == nil {
		return nil, serverutils.NewApiError(fiber.StatusNotFound, "workshop %s not found", id)
	}

	questions := make([]dto.WorkshopQuestionResponse, 0, len(workshop.Questions))
	for _, q := range workshop.Questions {
		questions = append(questions, dto.WorkshopQuestionResponse{
			Id:       q.Id,
			Text:     q.Text,
			Category: q.Category,
		})
	}

	return &dto.ShowWorkshopResponse{
		Id:                  workshop.Id,
		Name:                workshop.Name,
		Slug:                workshop.Slug,
		Status:              workshop.Status,
		BoardId:             workshop.BoardId,
		Questions:           questions,
		SimilarityThreshold: workshop.SimilarityThreshold,
		CreatedAt:           workshop.CreatedAt,
	}, nil
}

func (s *workshopService) Themes(ctx context.Context, workshopID uuid.UUID) ([]*dto.ThemeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	themes, err := uow.ThemeRepository().FindAll(ctx,
		specification.ByWorkshopID{WorkshopID: workshopID},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ThemeResponse, 0, len(themes))
	for _, theme := range themes {
		// Counting from the ideas table keeps the number honest even when a
		// retry bumped SampleCount twice.
		count, err := uow.ProcessedIdeaRepository().Count(ctx, specification.ByThemeID{ThemeID: theme.Id})
		if err != nil {
			return nil, err
		}
		responses = append(responses, &dto.ThemeResponse{
			Id:         theme.Id,
			Label:      theme.Label,
			Summary:    theme.Summary,
			IdeaCount:  count,
			IsCatchAll: theme.IsCatchAll,
			CreatedAt:  theme.CreatedAt,
		})
	}
	return responses, nil
}

func (s *workshopService) Ideas(ctx context.Context, workshopID uuid.UUID, limit, offset int) ([]*dto.IdeaResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	ideas, err := uow.ProcessedIdeaRepository().FindAll(ctx,
		specification.ByWorkshopID{WorkshopID: workshopID},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.IdeaResponse, 0, len(ideas))
	for _, idea := range ideas {
		responses = append(responses, &dto.IdeaResponse{
			Id:        idea.Id,
			SessionId: idea.SessionId,
			Nickname:  idea.Nickname,
			Title:     idea.Title,
			Text:      idea.CanonicalText,
			Category:  idea.Category,
			Sentiment: idea.Sentiment,
			ThemeId:   idea.ThemeId,
			CardRef:   idea.CardRef,
			CreatedAt: idea.CreatedAt,
		})
	}
	return responses, nil
}

func (s *workshopService) DeadLetters(ctx context.Context, workshopID uuid.UUID) ([]*dto.DeadLetterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	records, err := uow.DeadLetterRepository().FindAll(ctx,
		specification.ByWorkshopID{WorkshopID: workshopID},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.DeadLetterResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, &dto.DeadLetterResponse{
			JobId:     record.JobId,
			SessionId: record.SessionId,
			Reason:    record.Reason,
			Attempts:  record.Attempts,
			FailedAt:  record.CreatedAt,
		})
	}
	return responses, nil
}
