package embedding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/chatdesk/internal/domain"
	"github.com/kailas-cloud/chatdesk/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

// mockEmbedder charges tokensPerText and records the size of every call.
type mockEmbedder struct {
	tokensPerText int
	err           error
	calls         []int
}

func (m *mockEmbedder) Model() string { return "test-model" }

func (m *mockEmbedder) Embeddings(_ context.Context, texts []string) (domain.EmbeddingBatch, error) {
	m.calls = append(m.calls, len(texts))
	if m.err != nil {
		return domain.EmbeddingBatch{}, m.err
	}
	out := domain.EmbeddingBatch{
		PromptTokens: m.tokensPerText * len(texts),
		TotalTokens:  m.tokensPerText * len(texts),
	}
	for i, t := range texts {
		out.Embeddings = append(out.Embeddings, domain.Embedding{ID: i, Vector: []float32{0.1}, Text: t})
	}
	return out, nil
}

func texts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("chunk-%d", i)
	}
	return out
}

func TestInstrumentedEmbedder_NoBudget(t *testing.T) {
	inner := &mockEmbedder{tokensPerText: 2}
	p := NewInstrumentedEmbedder(inner, "openai", nil, zap.NewNop())

	res, err := p.Embeddings(context.Background(), texts(3))
	require.NoError(t, err)
	assert.Len(t, res.Embeddings, 3)
	assert.Equal(t, 6, res.TotalTokens)
	assert.Equal(t, "test-model", p.Model())
}

func TestInstrumentedEmbedder_Empty(t *testing.T) {
	inner := &mockEmbedder{}
	p := NewInstrumentedEmbedder(inner, "openai", nil, zap.NewNop())

	res, err := p.Embeddings(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Embeddings)
	assert.Empty(t, inner.calls)
}

func TestInstrumentedEmbedder_SplitsAndOffsetsIDs(t *testing.T) {
	inner := &mockEmbedder{tokensPerText: 1}
	p := NewInstrumentedEmbedder(inner, "openai", nil, zap.NewNop())
	p.batchSize = 2

	res, err := p.Embeddings(context.Background(), texts(5))
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2, 1}, inner.calls)
	require.Len(t, res.Embeddings, 5)
	for i, e := range res.Embeddings {
		assert.Equal(t, i, e.ID)
		assert.Equal(t, fmt.Sprintf("chunk-%d", i), e.Text)
	}
	assert.Equal(t, 5, res.TotalTokens)
}

func TestInstrumentedEmbedder_BudgetRejection(t *testing.T) {
	bt := NewBudgetTracker("openai", 10, 0, BudgetActionReject, zap.NewNop())
	bt.Record(10)
	inner := &mockEmbedder{tokensPerText: 1}
	p := NewInstrumentedEmbedder(inner, "openai", bt, zap.NewNop())

	_, err := p.Embeddings(context.Background(), texts(1))
	require.ErrorIs(t, err, domain.ErrQuotaExceeded)
	assert.Empty(t, inner.calls)
}

func TestInstrumentedEmbedder_RechecksBetweenSubBatches(t *testing.T) {
	bt := NewBudgetTracker("openai", 3, 0, BudgetActionReject, zap.NewNop())
	inner := &mockEmbedder{tokensPerText: 2}
	p := NewInstrumentedEmbedder(inner, "openai", bt, zap.NewNop())
	p.batchSize = 2

	_, err := p.Embeddings(context.Background(), texts(6))
	require.ErrorIs(t, err, domain.ErrQuotaExceeded)
	assert.Equal(t, []int{2}, inner.calls)
	assert.Equal(t, int64(4), bt.DailyUsed())
}

func TestInstrumentedEmbedder_RecordsBudgetAndGauge(t *testing.T) {
	bt := NewBudgetTracker("gauge-test", 1000, 0, BudgetActionReject, zap.NewNop())
	inner := &mockEmbedder{tokensPerText: 25}
	p := NewInstrumentedEmbedder(inner, "gauge-test", bt, zap.NewNop())

	_, err := p.Embeddings(context.Background(), texts(4))
	require.NoError(t, err)

	assert.Equal(t, int64(100), bt.DailyUsed())
	g := metrics.EmbeddingBudgetTokensRemaining
	assert.InDelta(t, 900, testutil.ToFloat64(g.WithLabelValues("gauge-test", "daily")), 0)
	assert.InDelta(t, -1, testutil.ToFloat64(g.WithLabelValues("gauge-test", "monthly")), 0)
}

func TestInstrumentedEmbedder_InnerError(t *testing.T) {
	upstream := errors.New("api error")
	bt := NewBudgetTracker("openai", 1000, 0, BudgetActionReject, zap.NewNop())
	inner := &mockEmbedder{err: upstream}
	p := NewInstrumentedEmbedder(inner, "openai", bt, zap.NewNop())

	_, err := p.Embeddings(context.Background(), texts(2))
	require.ErrorIs(t, err, upstream)
	assert.Zero(t, bt.DailyUsed())
}
