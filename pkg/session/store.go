package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	StatusActive  = "active"
	StatusIdle    = "idle"
	StatusExpired = "expired"

	keyPrefix = "autoideas:session:"
)

// Session tracks one participant's ongoing interaction with a workshop.
// Expiry is a status flag, never a deletion, so history survives while the
// workshop is live.
type Session struct {
	ID           string    `json:"id"`
	WorkshopID   string    `json:"workshop_id"`
	Nickname     string    `json:"nickname,omitempty"`
	IdeaCount    int64     `json:"idea_count"`
	Status       string    `json:"status"`
	LastActivity time.Time `json:"last_activity_at"`
	CreatedAt    time.Time `json:"created_at"`
}

var ErrNotFound = errors.New("session: not found")

// Store keeps session state in Redis hashes. Counter updates use HIncrBy so
// concurrent workers touching the same session never lose increments.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func sessionKey(id string) string {
	return keyPrefix + id
}

// Touch creates the session if absent and atomically bumps idea_count and
// last_activity. Returns the post-update session.
func (s *Store) Touch(ctx context.Context, sessionID, workshopID, nickname string) (*Session, error) {
	now := time.Now().UTC()
	key := sessionKey(sessionID)

	pipe := s.rdb.TxPipeline()
	pipe.HSetNX(ctx, key, "created_at", now.Format(time.RFC3339Nano))
	count := pipe.HIncrBy(ctx, key, "idea_count", 1)
	fields := map[string]interface{}{
		"workshop_id":   workshopID,
		"last_activity": now.Format(time.RFC3339Nano),
		"status":        StatusActive,
	}
	if nickname != "" {
		fields["nickname"] = nickname
	}
	pipe.HSet(ctx, key, fields)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to touch session %s: %w", sessionID, err)
	}

	return &Session{
		ID:           sessionID,
		WorkshopID:   workshopID,
		Nickname:     nickname,
		IdeaCount:    count.Val(),
		Status:       StatusActive,
		LastActivity: now,
	}, nil
}

func (s *Store) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.rdb.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	return fromHash(sessionID, data), nil
}

// ExpireIdle sweeps all sessions and flips those inactive for longer than
// ttl to expired. Returns the ids it transitioned.
func (s *Store) ExpireIdle(ctx context.Context, ttl time.Duration) ([]string, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	var expired []string

	iter := s.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		vals, err := s.rdb.HMGet(ctx, key, "last_activity", "status").Result()
		if err != nil {
			return expired, fmt.Errorf("failed to inspect %s: %w", key, err)
		}

		lastActivity, _ := vals[0].(string)
		status, _ := vals[1].(string)
		if status == StatusExpired || lastActivity == "" {
			continue
		}

		ts, err := time.Parse(time.RFC3339Nano, lastActivity)
		if err != nil || ts.After(cutoff) {
			continue
		}

		if err := s.rdb.HSet(ctx, key, "status", StatusExpired).Err(); err != nil {
			return expired, fmt.Errorf("failed to expire %s: %w", key, err)
		}
		expired = append(expired, key[len(keyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return expired, fmt.Errorf("session sweep failed: %w", err)
	}
	return expired, nil
}

// RunSweeper calls ExpireIdle on an interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval, ttl time.Duration, onExpired func([]string), onError func(error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ids, err := s.ExpireIdle(ctx, ttl)
			if err != nil && onError != nil {
				onError(err)
			}
			if len(ids) > 0 && onExpired != nil {
				onExpired(ids)
			}
		}
	}
}

func fromHash(id string, data map[string]string) *Session {
	sess := &Session{
		ID:         id,
		WorkshopID: data["workshop_id"],
		Nickname:   data["nickname"],
		Status:     data["status"],
	}
	if sess.Status == "" {
		sess.Status = StatusActive
	}
	if v, err := strconv.ParseInt(data["idea_count"], 10, 64); err == nil {
		sess.IdeaCount = v
	}
	if ts, err := time.Parse(time.RFC3339Nano, data["last_activity"]); err == nil {
		sess.LastActivity = ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, data["created_at"]); err == nil {
		sess.CreatedAt = ts
	}
	return sess
}
