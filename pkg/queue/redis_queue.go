package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	pollInterval    = 100 * time.Millisecond
	maintainEvery   = time.Second
	maxRequeueDelay = 5 * time.Minute
)

// RedisQueue implements Queue on top of Redis lists and sorted sets.
// All keys are namespaced by queue name:
//
//	autoideas:{name}:pending     LIST of job ids, LPUSH head / RPOPLPUSH tail
//	autoideas:{name}:processing  LIST of claimed job ids
//	autoideas:{name}:job:{id}    JSON body of the job
//	autoideas:{name}:claims      ZSET job id -> visibility deadline (unix)
//	autoideas:{name}:delayed     ZSET job id -> ready-at (unix)
//	autoideas:{name}:dead        LIST of DeadRecord JSON
type RedisQueue struct {
	rdb               *redis.Client
	name              string
	maxAttempts       int
	visibilityTimeout time.Duration
	retryBaseDelay    time.Duration
}

func NewRedisQueue(rdb *redis.Client, name string, maxAttempts int, visibilityTimeout, retryBaseDelay time.Duration) *RedisQueue {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if visibilityTimeout <= 0 {
		visibilityTimeout = 2 * time.Minute
	}
	if retryBaseDelay <= 0 {
		retryBaseDelay = 5 * time.Second
	}
	return &RedisQueue{
		rdb:               rdb,
		name:              name,
		maxAttempts:       maxAttempts,
		visibilityTimeout: visibilityTimeout,
		retryBaseDelay:    retryBaseDelay,
	}
}

func (q *RedisQueue) key(kind string) string {
	return fmt.Sprintf("autoideas:%s:%s", q.name, kind)
}

func (q *RedisQueue) jobKey(jobID uuid.UUID) string {
	return fmt.Sprintf("autoideas:%s:job:%s", q.name, jobID)
}

func (q *RedisQueue) Enqueue(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to serialize job: %w", err)
	}

	pipe := q.rdb.TxPipeline()
	pipe.Set(ctx, q.jobKey(job.JobID), data, 0)
	pipe.LPush(ctx, q.key("pending"), job.JobID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to enqueue job %s: %w", job.JobID, err)
	}
	return nil
}

// Dequeue claims the oldest pending job. The claim is tracked with a
// visibility deadline; a worker that dies without settling the job gets it
// redelivered by the maintenance loop.
func (q *RedisQueue) Dequeue(ctx context.Context) (*Job, error) {
	for {
		id, err := q.rdb.RPopLPush(ctx, q.key("pending"), q.key("processing")).Result()
		switch {
		case err == nil:
			job, err := q.claim(ctx, id)
			if err != nil {
				return nil, err
			}
			if job != nil {
				return job, nil
			}
			// Stale id whose body is gone; entry already removed, keep polling.
			continue
		case errors.Is(err, redis.Nil):
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(pollInterval):
			}
		default:
			return nil, fmt.Errorf("failed to dequeue: %w", err)
		}
	}
}

func (q *RedisQueue) claim(ctx context.Context, id string) (*Job, error) {
	jobID, err := uuid.Parse(id)
	if err != nil {
		q.rdb.LRem(ctx, q.key("processing"), 1, id)
		return nil, nil
	}

	data, err := q.rdb.Get(ctx, q.jobKey(jobID)).Result()
	if errors.Is(err, redis.Nil) {
		// Body vanished (settled by a competing delivery). Drop the claim.
		q.rdb.LRem(ctx, q.key("processing"), 1, id)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", id, err)
	}

	var job Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, fmt.Errorf("failed to decode job %s: %w", id, err)
	}

	deadline := float64(time.Now().Add(q.visibilityTimeout).Unix())
	if err := q.rdb.ZAdd(ctx, q.key("claims"), redis.Z{Score: deadline, Member: id}).Err(); err != nil {
		return nil, fmt.Errorf("failed to record claim for %s: %w", id, err)
	}
	return &job, nil
}

func (q *RedisQueue) Ack(ctx context.Context, jobID uuid.UUID) error {
	id := jobID.String()
	pipe := q.rdb.TxPipeline()
	removed := pipe.LRem(ctx, q.key("processing"), 1, id)
	pipe.ZRem(ctx, q.key("claims"), id)
	pipe.Del(ctx, q.jobKey(jobID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to ack job %s: %w", jobID, err)
	}
	if removed.Val() == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (q *RedisQueue) Nack(ctx context.Context, jobID uuid.UUID, reason string) (bool, *Job, error) {
	data, err := q.rdb.Get(ctx, q.jobKey(jobID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil, ErrJobNotFound
	}
	if err != nil {
		return false, nil, fmt.Errorf("failed to load job %s: %w", jobID, err)
	}

	var job Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return false, nil, fmt.Errorf("failed to decode job %s: %w", jobID, err)
	}

	id := jobID.String()
	job.AttemptCount++

	if job.AttemptCount >= q.maxAttempts {
		record := DeadRecord{Job: job, Reason: reason, FailedAt: time.Now().UTC()}
		recordJSON, err := json.Marshal(record)
		if err != nil {
			return false, nil, fmt.Errorf("failed to serialize dead record: %w", err)
		}

		pipe := q.rdb.TxPipeline()
		pipe.LRem(ctx, q.key("processing"), 1, id)
		pipe.ZRem(ctx, q.key("claims"), id)
		pipe.LPush(ctx, q.key("dead"), recordJSON)
		pipe.Del(ctx, q.jobKey(jobID))
		if _, err := pipe.Exec(ctx); err != nil {
			return false, nil, fmt.Errorf("failed to dead-letter job %s: %w", jobID, err)
		}
		return true, &job, nil
	}

	updated, err := json.Marshal(&job)
	if err != nil {
		return false, nil, fmt.Errorf("failed to serialize job %s: %w", jobID, err)
	}

	readyAt := float64(time.Now().Add(q.requeueDelay(job.AttemptCount)).Unix())
	pipe := q.rdb.TxPipeline()
	pipe.LRem(ctx, q.key("processing"), 1, id)
	pipe.ZRem(ctx, q.key("claims"), id)
	pipe.Set(ctx, q.jobKey(jobID), updated, 0)
	pipe.ZAdd(ctx, q.key("delayed"), redis.Z{Score: readyAt, Member: id})
	if _, err := pipe.Exec(ctx); err != nil {
		return false, nil, fmt.Errorf("failed to requeue job %s: %w", jobID, err)
	}
	return false, &job, nil
}

// requeueDelay doubles per attempt starting from the base delay.
func (q *RedisQueue) requeueDelay(attempt int) time.Duration {
	delay := q.retryBaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay > maxRequeueDelay {
			return maxRequeueDelay
		}
	}
	return delay
}

func (q *RedisQueue) Stats(ctx context.Context) (*Stats, error) {
	pipe := q.rdb.Pipeline()
	pending := pipe.LLen(ctx, q.key("pending"))
	processing := pipe.LLen(ctx, q.key("processing"))
	delayed := pipe.ZCard(ctx, q.key("delayed"))
	dead := pipe.LLen(ctx, q.key("dead"))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to read queue stats: %w", err)
	}
	return &Stats{
		Pending:    pending.Val(),
		Processing: processing.Val(),
		Delayed:    delayed.Val(),
		Dead:       dead.Val(),
	}, nil
}

// PromoteDue moves delayed jobs whose backoff has elapsed back to pending.
func (q *RedisQueue) PromoteDue(ctx context.Context) (int, error) {
	now := fmt.Sprintf("%d", time.Now().Unix())
	ids, err := q.rdb.ZRangeByScore(ctx, q.key("delayed"), &redis.ZRangeBy{Min: "-inf", Max: now}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to scan delayed jobs: %w", err)
	}

	moved := 0
	for _, id := range ids {
		removed, err := q.rdb.ZRem(ctx, q.key("delayed"), id).Result()
		if err != nil {
			return moved, err
		}
		if removed == 0 {
			continue // another instance promoted it first
		}
		if err := q.rdb.LPush(ctx, q.key("pending"), id).Err(); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}

// ReclaimAbandoned redelivers jobs whose claim deadline passed without an
// ack or nack (worker crash). The attempt count is not incremented: crash
// redelivery is the at-least-once contract, not a failed attempt.
func (q *RedisQueue) ReclaimAbandoned(ctx context.Context) (int, error) {
	now := fmt.Sprintf("%d", time.Now().Unix())
	ids, err := q.rdb.ZRangeByScore(ctx, q.key("claims"), &redis.ZRangeBy{Min: "-inf", Max: now}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to scan claims: %w", err)
	}

	reclaimed := 0
	for _, id := range ids {
		removed, err := q.rdb.ZRem(ctx, q.key("claims"), id).Result()
		if err != nil {
			return reclaimed, err
		}
		if removed == 0 {
			continue
		}
		pipe := q.rdb.TxPipeline()
		pipe.LRem(ctx, q.key("processing"), 1, id)
		pipe.LPush(ctx, q.key("pending"), id)
		if _, err := pipe.Exec(ctx); err != nil {
			return reclaimed, err
		}
		reclaimed++
	}
	return reclaimed, nil
}

// Run drives promotion and reclaim until ctx is done. Safe to run on every
// instance; the ZRem guards make the loops race-free across instances.
func (q *RedisQueue) Run(ctx context.Context, onError func(error)) {
	ticker := time.NewTicker(maintainEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := q.PromoteDue(ctx); err != nil && onError != nil {
				onError(err)
			}
			if _, err := q.ReclaimAbandoned(ctx); err != nil && onError != nil {
				onError(err)
			}
		}
	}
}

// DeadLetters returns up to limit most recent dead-letter records.
func (q *RedisQueue) DeadLetters(ctx context.Context, limit int64) ([]DeadRecord, error) {
	raw, err := q.rdb.LRange(ctx, q.key("dead"), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read dead letters: %w", err)
	}
	records := make([]DeadRecord, 0, len(raw))
	for _, r := range raw {
		var rec DeadRecord
		if err := json.Unmarshal([]byte(r), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
