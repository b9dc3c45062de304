package embedding

import "context"

// EmbeddingProvider defines the interface for generating text embeddings.
// Implementations must return unit-length vectors so cosine similarity can
// be computed as a plain dot product.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}
