// Package docembed turns documents into chunk embeddings.
package docembed

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/chatdesk/internal/domain"
)

// Result is the outcome of one embedding run.
type Result struct {
	Embeddings  []domain.Embedding
	Chunks      int
	TotalTokens int
}

// Option configures a Service.
type Option func(*Service)

// WithChunkSize overrides DefaultChunkSize.
func WithChunkSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithExtractor replaces the PDF page extractor.
func WithExtractor(e PageExtractor) Option {
	return func(s *Service) { s.extractor = e }
}

// Service chunks documents and embeds the chunks in one batched call.
type Service struct {
	embedder  Embedder
	extractor PageExtractor
	chunkSize int
	logger    *zap.Logger
}

// New creates a document embedding service.
func New(embedder Embedder, l *zap.Logger, opts ...Option) *Service {
	if l == nil {
		l = zap.NewNop()
	}
	s := &Service{
		embedder:  embedder,
		extractor: PDFExtractor{},
		chunkSize: DefaultChunkSize,
		logger:    l,
	}
	for _, fn := range opts {
		fn(s)
	}
	return s
}

// EmbedPDF extracts the text of every page and embeds it.
func (s *Service) EmbedPDF(ctx context.Context, r io.ReaderAt, size int64) (Result, error) {
	pages, err := s.extractor.Pages(r, size)
	if err != nil {
		return Result{}, fmt.Errorf("extract pdf: %w", err)
	}
	return s.embed(ctx, pages)
}

// EmbedText embeds plain text as a single page.
func (s *Service) EmbedText(ctx context.Context, text string) (Result, error) {
	return s.embed(ctx, []string{text})
}

func (s *Service) embed(ctx context.Context, pages []string) (Result, error) {
	chunks := Chunk(pages, s.chunkSize)
	if !hasContent(chunks) {
		return Result{}, domain.ErrEmptyDocument
	}

	batch, err := s.embedder.Embeddings(ctx, chunks)
	if err != nil {
		return Result{}, fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}

	s.logger.Info("Document embedded",
		zap.Int("pages", len(pages)),
		zap.Int("chunks", len(chunks)),
		zap.Int("total_tokens", batch.TotalTokens),
		zap.String("model", s.embedder.Model()),
	)

	return Result{Embeddings: batch.Embeddings, Chunks: len(chunks), TotalTokens: batch.TotalTokens}, nil
}

func hasContent(chunks []string) bool {
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}
