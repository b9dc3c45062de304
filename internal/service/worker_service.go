package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"autoideas-be/internal/entity"
	"autoideas-be/internal/pkg/logger"
	"autoideas-be/internal/repository/specification"
	"autoideas-be/internal/repository/unitofwork"
	"autoideas-be/pkg/clustering"
	"autoideas-be/pkg/enrich"
	"autoideas-be/pkg/events"
	"autoideas-be/pkg/queue"
	"autoideas-be/pkg/session"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// ThemeAssigner routes an enriched idea into a theme. Implemented by the
// clustering engine.
type ThemeAssigner interface {
	AssignTheme(ctx context.Context, workshop *entity.Workshop, content *enrich.ProcessedContent) (*clustering.Assignment, error)
}

// CardPlacer posts an idea to the workshop board. Implemented by the board
// poster; must be idempotent per idea id.
type CardPlacer interface {
	PlaceCard(ctx context.Context, workshop *entity.Workshop, idea *entity.ProcessedIdea, themeLabel string, themeIndex int) (string, error)
}

// SessionToucher records participant activity. Implemented by the session store.
type SessionToucher interface {
	Touch(ctx context.Context, sessionID, workshopID, nickname string) (*session.Session, error)
}

// IWorkerService drains the idea queue with a pool of workers.
type IWorkerService interface {
	Run(ctx context.Context)
}

type workerService struct {
	jobQueue         queue.Queue
	uowFactory       unitofwork.RepositoryFactory
	processor        *enrich.Processor
	assigner         ThemeAssigner
	placer           CardPlacer
	sessions         SessionToucher
	publisherService IPublisherService
	logger           logger.ILogger

	workerCount   int
	workshopCache *gocache.Cache
}

func NewWorkerService(
	jobQueue queue.Queue,
	uowFactory unitofwork.RepositoryFactory,
	processor *enrich.Processor,
	assigner ThemeAssigner,
	placer CardPlacer,
	sessions SessionToucher,
	publisherService IPublisherService,
	log logger.ILogger,
	workerCount int,
) IWorkerService {
	if workerCount <= 0 {
		workerCount = 4
	}
	return &workerService{
		jobQueue:         jobQueue,
		uowFactory:       uowFactory,
		processor:        processor,
		assigner:         assigner,
		placer:           placer,
		sessions:         sessions,
		publisherService: publisherService,
		logger:           log,
		workerCount:      workerCount,
		workshopCache:    gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// Run blocks until ctx is done. Each worker claims one job at a time; a
// failed job is nacked with a reason and eventually dead-lettered by the
// queue.
func (s *workerService) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < s.workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.workerLoop(ctx, workerID)
		}(i)
	}
	wg.Wait()
}

func (s *workerService) workerLoop(ctx context.Context, workerID int) {
	for {
		job, err := s.jobQueue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			s.logger.Error("Worker", "Dequeue failed", map[string]interface{}{
				"worker": workerID, "error": err.Error(),
			})
			continue
		}

		if err := s.processJob(ctx, job); err != nil {
			s.logger.Warn("Worker", "Job failed", map[string]interface{}{
				"worker": workerID, "job_id": job.JobID, "attempt": job.AttemptCount, "error": err.Error(),
			})
			s.settleFailure(ctx, job, err)
			continue
		}

		if err := s.jobQueue.Ack(ctx, job.JobID); err != nil && !errors.Is(err, queue.ErrJobNotFound) {
			s.logger.Error("Worker", "Ack failed", map[string]interface{}{
				"worker": workerID, "job_id": job.JobID, "error": err.Error(),
			})
		}
	}
}

func (s *workerService) processJob(ctx context.Context, job *queue.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing job: %v", r)
		}
	}()

	workshop, err := s.lookupWorkshop(ctx, job.WorkshopID)
	if err != nil {
		return fmt.Errorf("workshop lookup failed: %w", err)
	}
	if workshop == nil {
		return fmt.Errorf("workshop %s does not exist", job.WorkshopID)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Redelivered jobs find their idea by the unique job id and skip straight
	// to acknowledging.
	existing, err := uow.ProcessedIdeaRepository().FindOne(ctx, specification.ByJobID{JobID: job.JobID})
	if err != nil {
		return fmt.Errorf("idempotency check failed: %w", err)
	}
	if existing != nil {
		return nil
	}

	content := s.processor.Process(job.Transcript, job.QuestionID, workshop)

	assignment, err := s.assigner.AssignTheme(ctx, workshop, content)
	if err != nil {
		return fmt.Errorf("theme assignment failed: %w", err)
	}

	// The idea id is derived from the job id so every redelivery computes the
	// same id and hits the same card cache entry.
	idea := &entity.ProcessedIdea{
		Id:            uuid.NewSHA1(uuid.NameSpaceOID, job.JobID[:]),
		JobId:         job.JobID,
		SessionId:     job.SessionID,
		WorkshopId:    job.WorkshopID,
		Nickname:      job.Nickname,
		QuestionId:    job.QuestionID,
		Title:         content.Title,
		CanonicalText: content.CanonicalText,
		Category:      content.Category,
		Sentiment:     content.Sentiment,
		ThemeId:       assignment.Theme.Id,
		CreatedAt:     time.Now().UTC(),
	}

	cardRef, err := s.placer.PlaceCard(ctx, workshop, idea, assignment.Theme.Label, themeColumn(assignment.Theme.Id))
	if err != nil {
		return fmt.Errorf("card placement failed: %w", err)
	}
	idea.CardRef = cardRef

	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to open transaction: %w", err)
	}
	if err := uow.ProcessedIdeaRepository().Create(ctx, idea); err != nil {
		uow.Rollback()
		return fmt.Errorf("failed to persist idea: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit idea: %w", err)
	}

	sess, err := s.sessions.Touch(ctx, job.SessionID, job.WorkshopID.String(), job.Nickname)
	if err != nil {
		// The idea is persisted; a session bookkeeping failure must not force
		// a reprocessing round.
		s.logger.Warn("Worker", "Session touch failed", map[string]interface{}{
			"job_id": job.JobID, "session_id": job.SessionID, "error": err.Error(),
		})
	}

	s.publisherService.Publish(ctx, events.NewIdeaProcessed(
		job.WorkshopID, job.SessionID, idea.Id, idea.ThemeId, idea.Title, idea.Category, idea.CardRef,
	))
	if sess != nil {
		s.publisherService.Publish(ctx, events.NewSessionUpdated(job.WorkshopID, sess.ID, sess.IdeaCount))
	}

	return nil
}

// settleFailure nacks the job and, when the queue gives up on it, records the
// dead letter and announces the failure.
func (s *workerService) settleFailure(ctx context.Context, job *queue.Job, procErr error) {
	deadLettered, deadJob, err := s.jobQueue.Nack(ctx, job.JobID, procErr.Error())
	if err != nil {
		if !errors.Is(err, queue.ErrJobNotFound) {
			s.logger.Error("Worker", "Nack failed", map[string]interface{}{
				"job_id": job.JobID, "error": err.Error(),
			})
		}
		return
	}
	if !deadLettered {
		return
	}

	payload, _ := json.Marshal(deadJob)
	uow := s.uowFactory.NewUnitOfWork(ctx)
	record := &entity.DeadLetterJob{
		Id:         uuid.New(),
		JobId:      deadJob.JobID,
		WorkshopId: deadJob.WorkshopID,
		SessionId:  deadJob.SessionID,
		Payload:    payload,
		Reason:     procErr.Error(),
		Attempts:   deadJob.AttemptCount,
		CreatedAt:  time.Now().UTC(),
	}
	if err := uow.DeadLetterRepository().Create(ctx, record); err != nil {
		s.logger.Error("Worker", "Failed to record dead letter", map[string]interface{}{
			"job_id": deadJob.JobID, "error": err.Error(),
		})
	}

	s.publisherService.Publish(ctx, events.NewProcessingError(
		deadJob.WorkshopID, deadJob.JobID, deadJob.SessionID, procErr.Error(),
	))
}

func (s *workerService) lookupWorkshop(ctx context.Context, id uuid.UUID) (*entity.Workshop, error) {
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

// themeColumn derives a stable board column for a theme from its id.
func themeColumn(themeID uuid.UUID) int {
	return int(themeID[0]) % 8
}
