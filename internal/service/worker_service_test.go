package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoideas-be/internal/entity"
	"autoideas-be/internal/pkg/logger"
	"autoideas-be/internal/repository/contract"
	"autoideas-be/internal/repository/specification"
	"autoideas-be/internal/repository/unitofwork"
	"autoideas-be/pkg/clustering"
	"autoideas-be/pkg/enrich"
	"autoideas-be/pkg/events"
	"autoideas-be/pkg/queue"
	"autoideas-be/pkg/session"
)

// --- in-memory repositories -------------------------------------------------

type fakeWorkshopRepo struct {
	mu        sync.Mutex
	workshops map[uuid.UUID]*entity.Workshop
}

func (r *fakeWorkshopRepo) Create(_ context.Context, w *entity.Workshop) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workshops[w.Id] = w
	return nil
}

func (r *fakeWorkshopRepo) Update(_ context.Context, w *entity.Workshop) error {
	return r.Create(context.Background(), w)
}

func (r *fakeWorkshopRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Workshop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByID); ok {
			return r.workshops[byID.ID], nil
		}
	}
	return nil, nil
}

func (r *fakeWorkshopRepo) FindAll(_ context.Context, _ ...specification.Specification) ([]*entity.Workshop, error) {
	return nil, nil
}

type fakeIdeaRepo struct {
	mu    sync.Mutex
	ideas map[uuid.UUID]*entity.ProcessedIdea // keyed by JobId
}

func (r *fakeIdeaRepo) Create(_ context.Context, idea *entity.ProcessedIdea) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ideas[idea.JobId]; exists {
		return errors.New("duplicate key value violates unique constraint")
	}
	r.ideas[idea.JobId] = idea
	return nil
}

func (r *fakeIdeaRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.ProcessedIdea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, spec := range specs {
		if byJob, ok := spec.(specification.ByJobID); ok {
			return r.ideas[byJob.JobID], nil
		}
	}
	return nil, nil
}

func (r *fakeIdeaRepo) FindAll(_ context.Context, _ ...specification.Specification) ([]*entity.ProcessedIdea, error) {
	return nil, nil
}

func (r *fakeIdeaRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.ideas)), nil
}

type fakeDeadRepo struct {
	mu      sync.Mutex
	records []*entity.DeadLetterJob
}

func (r *fakeDeadRepo) Create(_ context.Context, job *entity.DeadLetterJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, job)
	return nil
}

func (r *fakeDeadRepo) FindAll(_ context.Context, _ ...specification.Specification) ([]*entity.DeadLetterJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records, nil
}

func (r *fakeDeadRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.records)), nil
}

type fakeUow struct {
	workshops *fakeWorkshopRepo
	ideas     *fakeIdeaRepo
	dead      *fakeDeadRepo
}

func (u *fakeUow) Begin(_ context.Context) error { return nil }
func (u *fakeUow) Commit() error                 { return nil }
func (u *fakeUow) Rollback() error               { return nil }

func (u *fakeUow) WorkshopRepository() contract.WorkshopRepository           { return u.workshops }
func (u *fakeUow) ThemeRepository() contract.ThemeRepository                 { return nil }
func (u *fakeUow) ProcessedIdeaRepository() contract.ProcessedIdeaRepository { return u.ideas }
func (u *fakeUow) DeadLetterRepository() contract.DeadLetterRepository       { return u.dead }

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(_ context.Context) unitofwork.UnitOfWork { return f.uow }

// --- pipeline fakes ---------------------------------------------------------

type fakeAssigner struct {
	theme *entity.Theme
	err   error
}

func (a *fakeAssigner) AssignTheme(_ context.Context, _ *entity.Workshop, _ *enrich.ProcessedContent) (*clustering.Assignment, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &clustering.Assignment{Theme: a.theme}, nil
}

type fakePlacer struct {
	mu    sync.Mutex
	calls int
	ref   string
}

func (p *fakePlacer) PlaceCard(_ context.Context, _ *entity.Workshop, _ *entity.ProcessedIdea, _ string, _ int) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.ref, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) byType(eventType string) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, e := range p.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// --- harness ----------------------------------------------------------------

type workerHarness struct {
	svc       *workerService
	queue     *queue.RedisQueue
	rdb       *redis.Client
	workshops *fakeWorkshopRepo
	ideas     *fakeIdeaRepo
	dead      *fakeDeadRepo
	placer    *fakePlacer
	publisher *recordingPublisher
	sessions  *session.Store
	workshop  *entity.Workshop
}

func newWorkerHarness(t *testing.T, assigner ThemeAssigner) *workerHarness {
	t.Helper()
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	workshop := &entity.Workshop{
		Id:     uuid.New(),
		Name:   "Ops ideas",
		Status: entity.WorkshopStatusActive,
		Questions: []entity.WorkshopQuestion{
			{Id: "q1", Text: "What slows down your workflow?"},
		},
	}

	workshops := &fakeWorkshopRepo{workshops: map[uuid.UUID]*entity.Workshop{workshop.Id: workshop}}
	ideas := &fakeIdeaRepo{ideas: map[uuid.UUID]*entity.ProcessedIdea{}}
	dead := &fakeDeadRepo{}
	factory := &fakeUowFactory{uow: &fakeUow{workshops: workshops, ideas: ideas, dead: dead}}

	placer := &fakePlacer{ref: "card-1"}
	publisher := &recordingPublisher{}
	sessions := session.NewStore(rdb)
	q := queue.NewRedisQueue(rdb, "worker_test", 3, 2*time.Minute, 5*time.Second)

	svc := NewWorkerService(
		q, factory, enrich.NewProcessor(), assigner, placer, sessions, publisher,
		logger.NewNop(), 2,
	).(*workerService)

	return &workerHarness{
		svc:       svc,
		queue:     q,
		rdb:       rdb,
		workshops: workshops,
		ideas:     ideas,
		dead:      dead,
		placer:    placer,
		publisher: publisher,
		sessions:  sessions,
		workshop:  workshop,
	}
}

func (h *workerHarness) newJob() *queue.Job {
	qid := "q1"
	return &queue.Job{
		JobID:       uuid.New(),
		SessionID:   "sess-1",
		WorkshopID:  h.workshop.Id,
		Nickname:    "ada",
		QuestionID:  &qid,
		Transcript:  "we retype member data on every renewal",
		SubmittedAt: time.Now().UTC(),
	}
}

// --- tests ------------------------------------------------------------------

func TestProcessJobSuccessPath(t *testing.T) {
	theme := &entity.Theme{Id: uuid.New(), Label: "Renewals"}
	h := newWorkerHarness(t, &fakeAssigner{theme: theme})
	ctx := context.Background()

	job := h.newJob()
	require.NoError(t, h.svc.processJob(ctx, job))

	idea := h.ideas.ideas[job.JobID]
	require.NotNil(t, idea)
	assert.Equal(t, uuid.NewSHA1(uuid.NameSpaceOID, job.JobID[:]), idea.Id)
	assert.Equal(t, "We retype member data on every renewal", idea.Title)
	assert.Equal(t, "workflow_friction", idea.Category)
	assert.Equal(t, theme.Id, idea.ThemeId)
	assert.Equal(t, "card-1", idea.CardRef)

	sess, err := h.sessions.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), sess.IdeaCount)

	processed := h.publisher.byType(events.TypeIdeaProcessed)
	require.Len(t, processed, 1)
	assert.Equal(t, h.workshop.Id, processed[0].WorkshopID())
	assert.Len(t, h.publisher.byType(events.TypeSessionUpdated), 1)
}

func TestProcessJobIdempotentOnRedelivery(t *testing.T) {
	theme := &entity.Theme{Id: uuid.New(), Label: "Renewals"}
	h := newWorkerHarness(t, &fakeAssigner{theme: theme})
	ctx := context.Background()

	job := h.newJob()
	require.NoError(t, h.svc.processJob(ctx, job))
	require.NoError(t, h.svc.processJob(ctx, job))

	assert.Len(t, h.ideas.ideas, 1)
	assert.Equal(t, 1, h.placer.calls, "redelivery must not post a second card")
	assert.Len(t, h.publisher.byType(events.TypeIdeaProcessed), 1)

	sess, err := h.sessions.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), sess.IdeaCount, "redelivery must not double count")
}

func TestFailingJobIsDeadLetteredAfterMaxAttempts(t *testing.T) {
	h := newWorkerHarness(t, &fakeAssigner{err: errors.New("embedding service down, catch-all gone too")})
	ctx := context.Background()

	job := h.newJob()
	require.NoError(t, h.queue.Enqueue(ctx, job))

	for attempt := 1; attempt <= 3; attempt++ {
		claimed, err := h.queue.Dequeue(ctx)
		require.NoError(t, err)

		procErr := h.svc.processJob(ctx, claimed)
		require.Error(t, procErr)
		h.svc.settleFailure(ctx, claimed, procErr)

		if attempt < 3 {
			past := float64(time.Now().Add(-time.Minute).Unix())
			require.NoError(t, h.rdb.ZAdd(ctx, "autoideas:worker_test:delayed", redis.Z{
				Score: past, Member: claimed.JobID.String(),
			}).Err())
			_, err = h.queue.PromoteDue(ctx)
			require.NoError(t, err)
		}
	}

	require.Len(t, h.dead.records, 1)
	assert.Equal(t, job.JobID, h.dead.records[0].JobId)
	assert.Equal(t, 3, h.dead.records[0].Attempts)
	assert.Contains(t, h.dead.records[0].Reason, "theme assignment failed")

	failures := h.publisher.byType(events.TypeProcessingError)
	require.Len(t, failures, 1)
	assert.Equal(t, h.workshop.Id, failures[0].WorkshopID())

	assert.Empty(t, h.ideas.ideas)
}

func TestUnknownWorkshopFailsJob(t *testing.T) {
	theme := &entity.Theme{Id: uuid.New(), Label: "Renewals"}
	h := newWorkerHarness(t, &fakeAssigner{theme: theme})

	job := h.newJob()
	job.WorkshopID = uuid.New()

	err := h.svc.processJob(context.Background(), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestRunDrainsQueue(t *testing.T) {
	theme := &entity.Theme{Id: uuid.New(), Label: "Renewals"}
	h := newWorkerHarness(t, &fakeAssigner{theme: theme})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var jobs []*queue.Job
	for i := 0; i < 5; i++ {
		job := h.newJob()
		jobs = append(jobs, job)
		require.NoError(t, h.queue.Enqueue(ctx, job))
	}

	done := make(chan struct{})
	go func() {
		h.svc.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		h.ideas.mu.Lock()
		defer h.ideas.mu.Unlock()
		return len(h.ideas.ideas) == len(jobs)
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop on cancel")
	}

	stats, err := h.queue.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Pending)
	assert.Zero(t, stats.Processing)

	sess, err := h.sessions.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), sess.IdeaCount)
}
