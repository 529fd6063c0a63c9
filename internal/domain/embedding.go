package domain

import "context"

// Embedding is a vector produced for one chunk of source text.
// ID is the chunk's position in the batch that produced it.
type Embedding struct {
	ID     int       `json:"id"`
	Vector []float32 `json:"vector"`
	Text   string    `json:"text"`
}

// EmbeddingBatch is the result of a single batched embeddings call.
type EmbeddingBatch struct {
	Embeddings   []Embedding
	PromptTokens int
	TotalTokens  int
}

// HealthChecker is implemented by remote dependencies that can report availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Embedder turns texts into vectors with one batched call. Embeddings are
// returned in input order with ID set to the input index.
type Embedder interface {
	Embeddings(ctx context.Context, texts []string) (EmbeddingBatch, error)
	Model() string
}
