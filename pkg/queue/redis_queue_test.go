package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) (*RedisQueue, *redis.Client) {
	t.Helper()
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisQueue(rdb, "test", 3, 2*time.Minute, 5*time.Second), rdb
}

func newJob(transcript string) *Job {
	return &Job{
		JobID:       uuid.New(),
		SessionID:   "sess-1",
		WorkshopID:  uuid.New(),
		Nickname:    "ada",
		Transcript:  transcript,
		SubmittedAt: time.Now().UTC(),
	}
}

func TestEnqueueDequeueFIFO(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	first := newJob("first idea")
	second := newJob("second idea")
	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.JobID, got.JobID)
	assert.Equal(t, "first idea", got.Transcript)

	got, err = q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.JobID, got.JobID)
}

func TestDequeueBlocksUntilCancelled(t *testing.T) {
	q, _ := newTestQueue(t)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAckRemovesJob(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	job := newJob("ack me")
	require.NoError(t, q.Enqueue(ctx, job))

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Ack(ctx, got.JobID))

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Pending)
	assert.Zero(t, stats.Processing)

	// A second ack finds nothing to settle.
	assert.ErrorIs(t, q.Ack(ctx, got.JobID), ErrJobNotFound)
}

func TestNackRequeuesWithAttemptCount(t *testing.T) {
	q, rdb := newTestQueue(t)
	ctx := context.Background()

	job := newJob("flaky")
	require.NoError(t, q.Enqueue(ctx, job))

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)

	deadLettered, nacked, err := q.Nack(ctx, got.JobID, "enrichment failed")
	require.NoError(t, err)
	assert.False(t, deadLettered)
	assert.Equal(t, 1, nacked.AttemptCount)

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Delayed)
	assert.Zero(t, stats.Processing)

	// Force the backoff to elapse and promote.
	past := float64(time.Now().Add(-time.Minute).Unix())
	require.NoError(t, rdb.ZAdd(ctx, "autoideas:test:delayed", redis.Z{Score: past, Member: got.JobID.String()}).Err())

	moved, err := q.PromoteDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	redelivered, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, job.JobID, redelivered.JobID)
	assert.Equal(t, 1, redelivered.AttemptCount)
}

func TestNackDeadLettersAfterMaxAttempts(t *testing.T) {
	q, rdb := newTestQueue(t)
	ctx := context.Background()

	job := newJob("always broken")
	require.NoError(t, q.Enqueue(ctx, job))

	for attempt := 1; attempt <= 3; attempt++ {
		got, err := q.Dequeue(ctx)
		require.NoError(t, err)

		deadLettered, nacked, err := q.Nack(ctx, got.JobID, "boom")
		require.NoError(t, err)
		assert.Equal(t, attempt, nacked.AttemptCount)

		if attempt < 3 {
			assert.False(t, deadLettered)
			past := float64(time.Now().Add(-time.Minute).Unix())
			require.NoError(t, rdb.ZAdd(ctx, "autoideas:test:delayed", redis.Z{Score: past, Member: got.JobID.String()}).Err())
			_, err = q.PromoteDue(ctx)
			require.NoError(t, err)
		} else {
			assert.True(t, deadLettered)
		}
	}

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Pending)
	assert.Zero(t, stats.Processing)
	assert.Zero(t, stats.Delayed)
	assert.Equal(t, int64(1), stats.Dead)

	records, err := q.DeadLetters(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, job.JobID, records[0].Job.JobID)
	assert.Equal(t, "boom", records[0].Reason)
	assert.Equal(t, 3, records[0].Job.AttemptCount)
}

func TestReclaimAbandonedDoesNotCountAttempt(t *testing.T) {
	q, rdb := newTestQueue(t)
	ctx := context.Background()

	job := newJob("worker died on me")
	require.NoError(t, q.Enqueue(ctx, job))

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Zero(t, got.AttemptCount)

	// Expire the claim as if the visibility timeout elapsed.
	past := float64(time.Now().Add(-time.Minute).Unix())
	require.NoError(t, rdb.ZAdd(ctx, "autoideas:test:claims", redis.Z{Score: past, Member: got.JobID.String()}).Err())

	reclaimed, err := q.ReclaimAbandoned(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, reclaimed)

	redelivered, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, job.JobID, redelivered.JobID)
	assert.Zero(t, redelivered.AttemptCount)
}

func TestReclaimLeavesLiveClaimsAlone(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, newJob("still working")))
	_, err := q.Dequeue(ctx)
	require.NoError(t, err)

	reclaimed, err := q.ReclaimAbandoned(ctx)
	require.NoError(t, err)
	assert.Zero(t, reclaimed)

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Processing)
}

func TestRequeueDelayBacksOffExponentially(t *testing.T) {
	q, _ := newTestQueue(t)

	assert.Equal(t, 5*time.Second, q.requeueDelay(1))
	assert.Equal(t, 10*time.Second, q.requeueDelay(2))
	assert.Equal(t, 20*time.Second, q.requeueDelay(3))
	assert.Equal(t, maxRequeueDelay, q.requeueDelay(20))
}

func TestStatsCountsEachState(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, newJob("a")))
	require.NoError(t, q.Enqueue(ctx, newJob("b")))

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	_, _, err = q.Nack(ctx, got.JobID, "retry later")
	require.NoError(t, err)

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Zero(t, stats.Processing)
	assert.Equal(t, int64(1), stats.Delayed)
	assert.Zero(t, stats.Dead)
}
