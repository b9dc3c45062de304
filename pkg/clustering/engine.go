// Package clustering assigns ideas to themes by cosine similarity against
// per-theme centroids. Assignment for a workshop is serialized through a
// per-workshop mutex so concurrent workers never create duplicate themes.
package clustering

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"

	"autoideas-be/internal/entity"
	"autoideas-be/pkg/embedding"
	"autoideas-be/pkg/enrich"
)

// ThemeStore is the persistence surface the engine needs. The repository
// layer satisfies it.
type ThemeStore interface {
	ListByWorkshop(ctx context.Context, workshopID uuid.UUID) ([]*entity.Theme, error)
	Create(ctx context.Context, theme *entity.Theme) (*entity.Theme, error)
	Update(ctx context.Context, theme *entity.Theme) (*entity.Theme, error)
}

// Assignment is the outcome of routing one idea.
type Assignment struct {
	Theme      *entity.Theme
	Created    bool
	Similarity float32
	// CatchAll is true when the embedding failed and the idea was routed to
	// the workshop's fallback theme.
	CatchAll bool
}

// Engine routes enriched ideas into themes.
type Engine struct {
	provider embedding.EmbeddingProvider
	store    ThemeStore

	defaultThreshold float32
	catchAllLabel    string

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewEngine(provider embedding.EmbeddingProvider, store ThemeStore, defaultThreshold float32, catchAllLabel string) *Engine {
	if defaultThreshold <= 0 || defaultThreshold >= 1 {
		defaultThreshold = 0.78
	}
	if catchAllLabel == "" {
		catchAllLabel = "Unsorted ideas"
	}
	return &Engine{
		provider:         provider,
		store:            store,
		defaultThreshold: defaultThreshold,
		catchAllLabel:    catchAllLabel,
		locks:            map[uuid.UUID]*sync.Mutex{},
	}
}

func (e *Engine) workshopLock(workshopID uuid.UUID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[workshopID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[workshopID] = lock
	}
	return lock
}

// AssignTheme embeds the idea text and joins the closest theme above the
// workshop's similarity threshold, updating its centroid as a running mean.
// Below the threshold a new theme is created. When the embedding provider
// fails the idea goes to the catch-all theme so no idea is ever lost.
func (e *Engine) AssignTheme(ctx context.Context, workshop *entity.Workshop, content *enrich.ProcessedContent) (*Assignment, error) {
	lock := e.workshopLock(workshop.Id)
	lock.Lock()
	defer lock.Unlock()

	vector, embedErr := e.embed(ctx, content)
	if embedErr != nil {
		theme, created, err := e.catchAllTheme(ctx, workshop)
		if err != nil {
			return nil, fmt.Errorf("embedding failed (%v) and catch-all unavailable: %w", embedErr, err)
		}
		theme.SampleCount++
		if _, err := e.store.Update(ctx, theme); err != nil {
			return nil, fmt.Errorf("failed to update catch-all theme: %w", err)
		}
		return &Assignment{Theme: theme, Created: created, CatchAll: true}, nil
	}

	themes, err := e.store.ListByWorkshop(ctx, workshop.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}

	threshold := workshop.SimilarityThreshold
	if threshold <= 0 || threshold >= 1 {
		threshold = e.defaultThreshold
	}

	var best *entity.Theme
	var bestScore float32 = -1
	for _, theme := range themes {
		if theme.IsCatchAll || len(theme.Centroid) != len(vector) {
			continue
		}
		score := CosineSimilarity(vector, theme.Centroid)
		if score > bestScore {
			best = theme
			bestScore = score
		}
	}

	if best != nil && bestScore >= threshold {
		best.Centroid = runningMean(best.Centroid, vector, best.SampleCount)
		best.SampleCount++
		updated, err := e.store.Update(ctx, best)
		if err != nil {
			return nil, fmt.Errorf("failed to update theme centroid: %w", err)
		}
		return &Assignment{Theme: updated, Similarity: bestScore}, nil
	}

	theme := &entity.Theme{
		Id:          uuid.New(),
		WorkshopId:  workshop.Id,
		Label:       themeLabel(content),
		Summary:     content.CanonicalText,
		Centroid:    vector,
		SampleCount: 1,
	}
	created, err := e.store.Create(ctx, theme)
	if err != nil {
		return nil, fmt.Errorf("failed to create theme: %w", err)
	}
	return &Assignment{Theme: created, Created: true, Similarity: bestScore}, nil
}

func (e *Engine) embed(ctx context.Context, content *enrich.ProcessedContent) ([]float32, error) {
	text := content.Title + ". " + content.CanonicalText
	res, err := e.provider.Generate(ctx, text, "CLUSTERING")
	if err != nil {
		return nil, err
	}
	if len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("provider returned empty embedding")
	}
	return res.Embedding.Values, nil
}

// catchAllTheme returns the workshop's fallback theme, creating it on first use.
func (e *Engine) catchAllTheme(ctx context.Context, workshop *entity.Workshop) (*entity.Theme, bool, error) {
	themes, err := e.store.ListByWorkshop(ctx, workshop.Id)
	if err != nil {
		return nil, false, err
	}
	for _, theme := range themes {
		if theme.IsCatchAll {
			return theme, false, nil
		}
	}

	label := workshop.CatchAllLabel
	if label == "" {
		label = e.catchAllLabel
	}
	theme, err := e.store.Create(ctx, &entity.Theme{
		Id:         uuid.New(),
		WorkshopId: workshop.Id,
		Label:      label,
		Summary:    "Ideas that could not be matched automatically",
		IsCatchAll: true,
	})
	if err != nil {
		return nil, false, err
	}
	return theme, true, nil
}

// themeLabel names a fresh theme after the dominant topic of its seed idea,
// falling back to the idea title.
func themeLabel(content *enrich.ProcessedContent) string {
	topics := enrich.Topics(content.Title+" "+content.CanonicalText, 1)
	if len(topics) == 0 {
		return content.Title
	}
	return strings.ToUpper(topics[0][:1]) + topics[0][1:]
}

// CosineSimilarity assumes both vectors are unit length; providers normalize
// their output, and centroids are re-normalized after every running mean.
func CosineSimilarity(a, b []float32) float32 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return float32(dot)
}

// runningMean folds the new vector into the centroid and re-normalizes.
func runningMean(centroid, vector []float32, sampleCount int) []float32 {
	n := float64(sampleCount)
	mean := make([]float32, len(centroid))
	for i := range centroid {
		mean[i] = float32((float64(centroid[i])*n + float64(vector[i])) / (n + 1))
	}
	return Normalize(mean)
}

// Normalize scales a vector to unit length.
func Normalize(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	if magnitude == 0 {
		return vec
	}
	inv := 1 / math.Sqrt(magnitude)
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) * inv)
	}
	return out
}
