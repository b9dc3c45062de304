package board

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoideas-be/internal/entity"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func testWorkshop() *entity.Workshop {
	return &entity.Workshop{
		Id:      uuid.New(),
		BoardId: "board-1",
		StyleRules: map[string]string{
			"wishlist": "#123456",
		},
	}
}

func testIdea() *entity.ProcessedIdea {
	return &entity.ProcessedIdea{
		Id:            uuid.New(),
		Title:         "Renewal friction",
		CanonicalText: "Renewal paperwork is slow",
		Category:      "workflow_friction",
		Nickname:      "ada",
	}
}

func TestPlaceCardPostsStickyNote(t *testing.T) {
	var calls int32
	var gotBody stickyNoteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/boards/board-1/sticky_notes", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"card-42"}`)
	}))
	t.Cleanup(srv.Close)

	poster := NewPoster(NewClient(srv.URL, "key", time.Second), newTestRedis(t), 2*time.Second)

	ref, err := poster.PlaceCard(context.Background(), testWorkshop(), testIdea(), "Renewals", 0)
	require.NoError(t, err)
	assert.Equal(t, "card-42", ref)
	assert.Equal(t, int32(1), calls)
	assert.Contains(t, gotBody.Data.Content, "<strong>Renewal friction</strong>")
	assert.Contains(t, gotBody.Data.Content, "By: ada")
	assert.Contains(t, gotBody.Data.Content, "Theme: Renewals")
	assert.Equal(t, "#ff9999", gotBody.Style.FillColor)
	assert.Equal(t, "square", gotBody.Data.Shape)
}

func TestPlaceCardIsIdempotentPerIdea(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"card-42"}`)
	}))
	t.Cleanup(srv.Close)

	poster := NewPoster(NewClient(srv.URL, "key", time.Second), newTestRedis(t), 2*time.Second)
	workshop := testWorkshop()
	idea := testIdea()

	first, err := poster.PlaceCard(context.Background(), workshop, idea, "Renewals", 0)
	require.NoError(t, err)
	second, err := poster.PlaceCard(context.Background(), workshop, idea, "Renewals", 0)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls, "redelivery must reuse the cached card")
}

func TestPlaceCardRetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"card-7"}`)
	}))
	t.Cleanup(srv.Close)

	poster := NewPoster(NewClient(srv.URL, "key", time.Second), newTestRedis(t), 10*time.Second)

	ref, err := poster.PlaceCard(context.Background(), testWorkshop(), testIdea(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, "card-7", ref)
	assert.Equal(t, int32(3), calls)
}

func TestPlaceCardStopsOnPermanentRejection(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message":"bad board"}`)
	}))
	t.Cleanup(srv.Close)

	poster := NewPoster(NewClient(srv.URL, "key", time.Second), newTestRedis(t), 10*time.Second)

	_, err := poster.PlaceCard(context.Background(), testWorkshop(), testIdea(), "", 0)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls, "4xx must not be retried")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
}

func TestColorPrecedence(t *testing.T) {
	workshop := testWorkshop()

	assert.Equal(t, "#123456", colorFor(workshop, "wishlist"), "style rules win")
	assert.Equal(t, "#99ccff", colorFor(workshop, "member_experience"), "defaults next")
	assert.Equal(t, fallbackColor, colorFor(workshop, "unknown"))
}

func TestCardPositionIsDeterministicPerIdea(t *testing.T) {
	workshop := testWorkshop()
	ideaID := uuid.New()

	x1, y1 := cardPosition(workshop, 2, ideaID)
	x2, y2 := cardPosition(workshop, 2, ideaID)
	assert.Equal(t, x1, x2)
	assert.Equal(t, y1, y2)

	// Column base moves with the theme index.
	x3, _ := cardPosition(workshop, 3, ideaID)
	assert.Equal(t, x1+defaultRegionWidth, x3)
}
