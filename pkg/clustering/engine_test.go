package clustering

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoideas-be/internal/entity"
	"autoideas-be/pkg/embedding"
	"autoideas-be/pkg/enrich"
)

// fakeProvider returns a fixed vector per input text.
type fakeProvider struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeProvider) Generate(_ context.Context, text string, _ string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	vec, ok := f.vectors[text]
	if !ok {
		vec = []float32{1, 0, 0}
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: vec},
	}, nil
}

// memStore is an in-memory ThemeStore.
type memStore struct {
	mu     sync.Mutex
	themes map[uuid.UUID]*entity.Theme
}

func newMemStore() *memStore {
	return &memStore{themes: map[uuid.UUID]*entity.Theme{}}
}

func (s *memStore) ListByWorkshop(_ context.Context, workshopID uuid.UUID) ([]*entity.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Theme
	for _, t := range s.themes {
		if t.WorkshopId == workshopID {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *memStore) Create(_ context.Context, theme *entity.Theme) (*entity.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *theme
	s.themes[theme.Id] = &copied
	return theme, nil
}

func (s *memStore) Update(_ context.Context, theme *entity.Theme) (*entity.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *theme
	s.themes[theme.Id] = &copied
	return theme, nil
}

func content(title, text string) *enrich.ProcessedContent {
	return &enrich.ProcessedContent{Title: title, CanonicalText: text}
}

func embedKey(c *enrich.ProcessedContent) string {
	return c.Title + ". " + c.CanonicalText
}

func TestAssignThemeCreatesFirstTheme(t *testing.T) {
	workshop := &entity.Workshop{Id: uuid.New(), SimilarityThreshold: 0.8}
	store := newMemStore()
	engine := NewEngine(&fakeProvider{}, store, 0.78, "Unsorted ideas")

	got, err := engine.AssignTheme(context.Background(), workshop, content("Renewal friction", "Renewal paperwork is slow"))
	require.NoError(t, err)
	assert.True(t, got.Created)
	assert.False(t, got.CatchAll)
	assert.Equal(t, 1, got.Theme.SampleCount)
	assert.Equal(t, workshop.Id, got.Theme.WorkshopId)
}

func TestAssignThemeJoinsSimilarTheme(t *testing.T) {
	workshop := &entity.Workshop{Id: uuid.New(), SimilarityThreshold: 0.8}
	store := newMemStore()

	a := content("Renewal friction", "Renewal paperwork is slow")
	b := content("Renewal delays", "Renewals take forever to approve")
	provider := &fakeProvider{vectors: map[string][]float32{
		embedKey(a): {1, 0, 0},
		embedKey(b): {0.95, 0.312, 0}, // cos ~0.95 vs a
	}}
	engine := NewEngine(provider, store, 0.78, "Unsorted ideas")

	first, err := engine.AssignTheme(context.Background(), workshop, a)
	require.NoError(t, err)
	second, err := engine.AssignTheme(context.Background(), workshop, b)
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.Theme.Id, second.Theme.Id)
	assert.Equal(t, 2, second.Theme.SampleCount)
	assert.GreaterOrEqual(t, second.Similarity, float32(0.8))
}

func TestAssignThemeCreatesNewThemeBelowThreshold(t *testing.T) {
	workshop := &entity.Workshop{Id: uuid.New(), SimilarityThreshold: 0.8}
	store := newMemStore()

	a := content("Renewal friction", "Renewal paperwork is slow")
	b := content("Parking", "We need more parking spots")
	provider := &fakeProvider{vectors: map[string][]float32{
		embedKey(a): {1, 0, 0},
		embedKey(b): {0, 1, 0},
	}}
	engine := NewEngine(provider, store, 0.78, "Unsorted ideas")

	first, err := engine.AssignTheme(context.Background(), workshop, a)
	require.NoError(t, err)
	second, err := engine.AssignTheme(context.Background(), workshop, b)
	require.NoError(t, err)

	assert.True(t, second.Created)
	assert.NotEqual(t, first.Theme.Id, second.Theme.Id)
}

func TestAssignThemeCentroidIsRunningMean(t *testing.T) {
	workshop := &entity.Workshop{Id: uuid.New(), SimilarityThreshold: 0.5}
	store := newMemStore()

	a := content("A", "a")
	b := content("B", "b")
	provider := &fakeProvider{vectors: map[string][]float32{
		embedKey(a): {1, 0, 0},
		embedKey(b): {0.8, 0.6, 0},
	}}
	engine := NewEngine(provider, store, 0.78, "Unsorted ideas")

	_, err := engine.AssignTheme(context.Background(), workshop, a)
	require.NoError(t, err)
	got, err := engine.AssignTheme(context.Background(), workshop, b)
	require.NoError(t, err)

	// Mean of (1,0,0) and (0.8,0.6,0) normalized stays unit length.
	var mag float64
	for _, v := range got.Theme.Centroid {
		mag += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, mag, 1e-5)
	assert.Greater(t, got.Theme.Centroid[0], got.Theme.Centroid[1])
}

func TestAssignThemeFallsBackToCatchAll(t *testing.T) {
	workshop := &entity.Workshop{Id: uuid.New(), CatchAllLabel: "Needs review"}
	store := newMemStore()
	engine := NewEngine(&fakeProvider{err: errors.New("provider down")}, store, 0.78, "Unsorted ideas")

	got, err := engine.AssignTheme(context.Background(), workshop, content("Lost", "text"))
	require.NoError(t, err)
	assert.True(t, got.CatchAll)
	assert.True(t, got.Theme.IsCatchAll)
	assert.Equal(t, "Needs review", got.Theme.Label)

	// Second failure reuses the same catch-all theme.
	again, err := engine.AssignTheme(context.Background(), workshop, content("Lost too", "text"))
	require.NoError(t, err)
	assert.Equal(t, got.Theme.Id, again.Theme.Id)
}

func TestConcurrentAssignsDoNotDuplicateThemes(t *testing.T) {
	workshop := &entity.Workshop{Id: uuid.New(), SimilarityThreshold: 0.8}
	store := newMemStore()
	// Every idea embeds to the same vector, so all must land in one theme.
	engine := NewEngine(&fakeProvider{}, store, 0.78, "Unsorted ideas")

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := engine.AssignTheme(context.Background(), workshop, content("Same", "idea"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	themes, err := store.ListByWorkshop(context.Background(), workshop.Id)
	require.NoError(t, err)
	require.Len(t, themes, 1)
	assert.Equal(t, n, themes[0].SampleCount)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-6)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
}
