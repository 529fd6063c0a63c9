package docembed

import (
	"context"
	"io"

	"github.com/kailas-cloud/chatdesk/internal/domain"
)

// Embedder is the batched embeddings backend, optionally cache-wrapped.
type Embedder interface {
	Embeddings(ctx context.Context, texts []string) (domain.EmbeddingBatch, error)
	Model() string
}

// PageExtractor returns the plain text of every page of a PDF document.
type PageExtractor interface {
	Pages(r io.ReaderAt, size int64) ([]string, error)
}
