package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(rdb), mr
}

func TestTouchCreatesSession(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Touch(ctx, "sess-1", "ws-1", "ada")
	require.NoError(t, err)
	assert.Equal(t, int64(1), sess.IdeaCount)
	assert.Equal(t, StatusActive, sess.Status)

	loaded, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "ws-1", loaded.WorkshopID)
	assert.Equal(t, "ada", loaded.Nickname)
	assert.Equal(t, int64(1), loaded.IdeaCount)
	assert.False(t, loaded.CreatedAt.IsZero())
}

func TestTouchIncrementsCounter(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.Touch(ctx, "sess-1", "ws-1", "ada")
		require.NoError(t, err)
	}

	sess, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), sess.IdeaCount)
}

func TestConcurrentTouchesNeverLoseIncrements(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := store.Touch(ctx, "sess-1", "ws-1", "ada")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, int64(n), sess.IdeaCount)
}

func TestGetUnknownSession(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpireIdleFlipsStatusWithoutDeleting(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, err := store.Touch(ctx, "stale", "ws-1", "")
	require.NoError(t, err)
	_, err = store.Touch(ctx, "fresh", "ws-1", "")
	require.NoError(t, err)

	// Backdate the stale session beyond the idle ttl.
	old := time.Now().UTC().Add(-25 * time.Hour).Format(time.RFC3339Nano)
	mr.HSet(keyPrefix+"stale", "last_activity", old)

	expired, err := store.ExpireIdle(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"stale"}, expired)

	stale, err := store.Get(ctx, "stale")
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, stale.Status)
	assert.Equal(t, int64(1), stale.IdeaCount)

	fresh, err := store.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, fresh.Status)
}

func TestExpireIdleSkipsAlreadyExpired(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, err := store.Touch(ctx, "stale", "ws-1", "")
	require.NoError(t, err)

	old := time.Now().UTC().Add(-48 * time.Hour).Format(time.RFC3339Nano)
	mr.HSet(keyPrefix+"stale", "last_activity", old)
	mr.HSet(keyPrefix+"stale", "status", StatusExpired)

	expired, err := store.ExpireIdle(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, expired)
}

func TestTouchReactivatesExpiredSession(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, err := store.Touch(ctx, "sess-1", "ws-1", "")
	require.NoError(t, err)
	mr.HSet(keyPrefix+"sess-1", "status", StatusExpired)

	sess, err := store.Touch(ctx, "sess-1", "ws-1", "")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, sess.Status)
	assert.Equal(t, int64(2), sess.IdeaCount)
}
