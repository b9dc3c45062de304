package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Job is the unit of queued work produced at ingest time. Immutable once
// enqueued except AttemptCount, which the queue increments on each nack.
type Job struct {
	JobID        uuid.UUID `json:"job_id"`
	SessionID    string    `json:"session_id"`
	WorkshopID   uuid.UUID `json:"workshop_id"`
	Nickname     string    `json:"nickname,omitempty"`
	QuestionID   *string   `json:"question_id,omitempty"`
	Transcript   string    `json:"transcript"`
	SubmittedAt  time.Time `json:"submitted_at"`
	AttemptCount int       `json:"attempt_count"`
}

// DeadRecord wraps a job that exhausted its attempts, as stored on the
// dead-letter list for manual inspection.
type DeadRecord struct {
	Job      Job       `json:"job"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}

type Stats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Delayed    int64 `json:"delayed"`
	Dead       int64 `json:"dead"`
}

var (
	// ErrJobNotFound is returned by Ack/Nack when the job is unknown,
	// typically because a competing delivery already settled it.
	ErrJobNotFound = errors.New("queue: job not found")
)

// Queue is a durable at-least-once work queue. A job handed out by Dequeue
// stays claimed until Ack, Nack, or its visibility deadline elapses, after
// which it is redelivered. Downstream effects must therefore be idempotent
// on JobID.
type Queue interface {
	Enqueue(ctx context.Context, job *Job) error
	// Dequeue blocks until a job is available or ctx is done.
	Dequeue(ctx context.Context) (*Job, error)
	Ack(ctx context.Context, jobID uuid.UUID) error
	// Nack returns the job to the queue with an incremented attempt count and
	// an exponential requeue delay. When attempts are exhausted the job moves
	// to the dead-letter list instead and deadLettered is true.
	Nack(ctx context.Context, jobID uuid.UUID, reason string) (deadLettered bool, job *Job, err error)
	Stats(ctx context.Context) (*Stats, error)
}
