package service

import (
	"context"
	"fmt"
	"time"

	"autoideas-be/internal/dto"
	"autoideas-be/internal/entity"
	"autoideas-be/internal/pkg/serverutils"
	"autoideas-be/internal/repository/specification"
	"autoideas-be/internal/repository/unitofwork"
	"autoideas-be/pkg/events"
	"autoideas-be/pkg/queue"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// IIngestService accepts ideas from the voice webhook and hands them to the
// queue. The request returns as soon as the job is durable.
type IIngestService interface {
	Submit(ctx context.Context, req *dto.SubmitIdeaRequest) (*dto.SubmitIdeaResponse, error)
	QueueStatus(ctx context.Context) (*dto.QueueStatusResponse, error)
}

type ingestService struct {
	uowFactory       unitofwork.RepositoryFactory
	jobQueue         queue.Queue
	publisherService IPublisherService
	workshopCache    *gocache.Cache
}

func NewIngestService(
	uowFactory unitofwork.RepositoryFactory,
	jobQueue queue.Queue,
	publisherService IPublisherService,
) IIngestService {
	return &ingestService{
		uowFactory:       uowFactory,
		jobQueue:         jobQueue,
		publisherService: publisherService,
		workshopCache:    gocache.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *ingestService) Submit(ctx context.Context, req *dto.SubmitIdeaRequest) (*dto.SubmitIdeaResponse, error) {
	workshop, err := s.lookupWorkshop(ctx, req.WorkshopId)
	if err != nil {
		return nil, err
	}
	if workshop == nil {
		return nil, serverutils.NewApiError(fiber.StatusUnprocessableEntity, "unknown workshop %s", req.WorkshopId)
	}
	if !workshop.IsActive() {
		return nil, serverutils.NewApiError(fiber.StatusUnprocessableEntity, "workshop %s is not accepting ideas", req.WorkshopId)
	}

	job := &queue.Job{
		JobID:       uuid.New(),
		SessionID:   req.SessionId,
		WorkshopID:  req.WorkshopId,
		Nickname:    req.Nickname,
		QuestionID:  req.QuestionId,
		Transcript:  req.Transcript,
		SubmittedAt: time.Now().UTC(),
	}

	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue idea: %w", err)
	}

	s.publisherService.Publish(ctx, events.NewIdeaSubmitted(job.WorkshopID, job.JobID, job.SessionID))

	return &dto.SubmitIdeaResponse{
		JobId:  job.JobID,
		Status: "queued",
	}, nil
}

func (s *ingestService) QueueStatus(ctx context.Context) (*dto.QueueStatusResponse, error) {
	stats, err := s.jobQueue.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.QueueStatusResponse{
		Pending:    stats.Pending,
		Processing: stats.Processing,
		Delayed:    stats.Delayed,
		Dead:       stats.Dead,
	}, nil
}

// lookupWorkshop serves the hot path from an in-memory cache; every idea of a
// workshop would otherwise hit the same row.
func (s *ingestService) lookupWorkshop(ctx context.Context, id uuid.UUID) (*entity.Workshop, error) {
	if cached, ok := s.workshopCache.Get(id.String()); ok {
		return cached.(*entity.Workshop), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	workshop, err := uow.WorkshopRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if workshop != nil {
		s.workshopCache.Set(id.String(), workshop, gocache.DefaultExpiration)
	}
	return workshop, nil
}
