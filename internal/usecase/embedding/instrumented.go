// Package embedding enforces the embedding token budget in front of a
// domain.Embedder.
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/chatdesk/internal/domain"
	"github.com/kailas-cloud/chatdesk/internal/metrics"
)

// DefaultMaxAPIBatchSize caps the texts sent in one upstream call.
const DefaultMaxAPIBatchSize = 256

// BudgetChecker is the subset of BudgetTracker the embedder needs.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// InstrumentedEmbedder splits large inputs into sub-batches and charges
// their tokens to a budget. Transport metrics live in the gateway.
type InstrumentedEmbedder struct {
	inner     domain.Embedder
	provider  string
	budget    BudgetChecker
	batchSize int
	logger    *zap.Logger
}

// NewInstrumentedEmbedder wraps inner. budget may be nil.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider string, budget BudgetChecker, logger *zap.Logger,
) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:     inner,
		provider:  provider,
		budget:    budget,
		batchSize: DefaultMaxAPIBatchSize,
		logger:    logger,
	}
}

// Model returns the inner embedder's model.
func (p *InstrumentedEmbedder) Model() string { return p.inner.Model() }

// Embeddings checks the budget before every sub-batch. IDs in the result
// index into texts regardless of how the input was split.
func (p *InstrumentedEmbedder) Embeddings(ctx context.Context, texts []string) (domain.EmbeddingBatch, error) {
	if len(texts) == 0 {
		return domain.EmbeddingBatch{}, nil
	}

	start := time.Now()
	var out domain.EmbeddingBatch
	out.Embeddings = make([]domain.Embedding, 0, len(texts))

	for offset := 0; offset < len(texts); offset += p.batchSize {
		if err := p.check(ctx, offset); err != nil {
			return domain.EmbeddingBatch{}, err
		}

		end := min(offset+p.batchSize, len(texts))
		res, err := p.inner.Embeddings(ctx, texts[offset:end])
		if err != nil {
			p.logger.Error("Embedding sub-batch failed",
				zap.String("provider", p.provider),
				zap.String("model", p.inner.Model()),
				zap.Int("offset", offset),
				zap.Int("size", end-offset),
				zap.Error(err),
			)
			return domain.EmbeddingBatch{}, fmt.Errorf("embed: %w", err)
		}

		for _, e := range res.Embeddings {
			e.ID += offset
			out.Embeddings = append(out.Embeddings, e)
		}
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
		p.record(res.TotalTokens)
	}

	p.logger.Debug("Embeddings completed",
		zap.String("provider", p.provider),
		zap.String("model", p.inner.Model()),
		zap.Duration("duration", time.Since(start)),
		zap.Int("texts", len(texts)),
		zap.Int("total_tokens", out.TotalTokens),
	)
	return out, nil
}

func (p *InstrumentedEmbedder) check(ctx context.Context, offset int) error {
	if p.budget == nil {
		return nil
	}
	if err := p.budget.Check(ctx); err != nil {
		p.logger.Warn("Embedding budget exceeded",
			zap.String("provider", p.provider),
			zap.Int("offset", offset),
			zap.Error(err),
		)
		return fmt.Errorf("budget check: %w", err)
	}
	return nil
}

func (p *InstrumentedEmbedder) record(tokens int) {
	if p.budget == nil || tokens <= 0 {
		return
	}
	p.budget.Record(int64(tokens))
	g := metrics.EmbeddingBudgetTokensRemaining
	g.WithLabelValues(p.provider, "daily").Set(float64(p.budget.RemainingDaily()))
	g.WithLabelValues(p.provider, "monthly").Set(float64(p.budget.RemainingMonthly()))
}
