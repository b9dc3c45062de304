package board

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"autoideas-be/internal/entity"
)

const (
	cardKeyPrefix = "autoideas:card:"
	cardKeyTTL    = 7 * 24 * time.Hour

	defaultRegionWidth  = 300.0
	defaultRegionHeight = 500.0
)

// defaultColors maps idea categories to sticky note fill colors. A workshop's
// style rules override these.
var defaultColors = map[string]string{
	"workflow_friction": "#ff9999",
	"member_experience": "#99ccff",
	"decision_support":  "#ffcc99",
	"wishlist":          "#99ff99",
	"general":           "#ffff99",
}

const fallbackColor = "#f0f0f0"

// Poster creates board cards idempotently. The card reference for each idea
// id is cached in Redis, so a redelivered job finds the existing card instead
// of posting a duplicate.
type Poster struct {
	client     *Client
	rdb        *redis.Client
	maxElapsed time.Duration
}

func NewPoster(client *Client, rdb *redis.Client, maxElapsed time.Duration) *Poster {
	if maxElapsed <= 0 {
		maxElapsed = 30 * time.Second
	}
	return &Poster{
		client:     client,
		rdb:        rdb,
		maxElapsed: maxElapsed,
	}
}

// PlaceCard posts the idea as a sticky note and returns the card reference.
// Transient failures are retried with exponential backoff; 4xx rejections
// stop immediately.
func (p *Poster) PlaceCard(ctx context.Context, workshop *entity.Workshop, idea *entity.ProcessedIdea, themeLabel string, themeIndex int) (string, error) {
	cacheKey := cardKeyPrefix + idea.Id.String()

	cached, err := p.rdb.Get(ctx, cacheKey).Result()
	if err == nil && cached != "" {
		return cached, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("failed to check card cache: %w", err)
	}

	card := Card{
		Content:   cardContent(idea, themeLabel),
		FillColor: colorFor(workshop, idea.Category),
	}
	card.X, card.Y = cardPosition(workshop, themeIndex, idea.Id)

	var cardRef string
	operation := func() error {
		info, err := p.client.CreateStickyNote(ctx, workshop.BoardId, card)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Permanent() {
				return backoff.Permanent(err)
			}
			return err
		}
		cardRef = info.ID
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = p.maxElapsed
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return "", fmt.Errorf("failed to place card for idea %s: %w", idea.Id, err)
	}

	if err := p.rdb.Set(ctx, cacheKey, cardRef, cardKeyTTL).Err(); err != nil {
		// The card exists; losing the cache only risks a duplicate on redelivery.
		return cardRef, nil
	}
	return cardRef, nil
}

func cardContent(idea *entity.ProcessedIdea, themeLabel string) string {
	nickname := idea.Nickname
	if nickname == "" {
		nickname = "Anonymous"
	}
	content := fmt.Sprintf("<p><strong>%s</strong></p><p>%s</p><p><em>By: %s</em></p>",
		idea.Title, idea.CanonicalText, nickname)
	if themeLabel != "" {
		content += fmt.Sprintf("<p>Theme: %s</p>", themeLabel)
	}
	return content
}

func colorFor(workshop *entity.Workshop, category string) string {
	if workshop != nil {
		if color, ok := workshop.StyleRules[category]; ok && color != "" {
			return color
		}
	}
	if color, ok := defaultColors[category]; ok {
		return color
	}
	return fallbackColor
}

// cardPosition lays themes out as columns and scatters cards inside the
// theme's region. The jitter is seeded from the idea id so a redelivered job
// computes the same position.
func cardPosition(workshop *entity.Workshop, themeIndex int, ideaID uuid.UUID) (float64, float64) {
	width := defaultRegionWidth
	height := defaultRegionHeight
	if workshop != nil {
		if workshop.RegionWidth > 0 {
			width = workshop.RegionWidth
		}
		if workshop.RegionHeight > 0 {
			height = workshop.RegionHeight
		}
	}

	seed := int64(ideaID[0])<<24 | int64(ideaID[1])<<16 | int64(ideaID[2])<<8 | int64(ideaID[3])
	rng := rand.New(rand.NewSource(seed))

	baseX := float64(themeIndex) * width
	x := baseX + float64(rng.Intn(101)-50)
	y := float64(rng.Intn(int(height) + 1))
	return x, y
}
