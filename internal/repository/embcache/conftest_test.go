package embcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/chatdesk/internal/db"
	"github.com/kailas-cloud/chatdesk/internal/domain"
)

type mockEmbedder struct {
	model  string
	vector []float32
	err    error
	calls  [][]string
	// tokensPerText is reported for every embedded text.
	tokensPerText int
}

func (m *mockEmbedder) Model() string { return m.model }

func (m *mockEmbedder) Embeddings(_ context.Context, texts []string) (domain.EmbeddingBatch, error) {
	m.calls = append(m.calls, texts)
	if m.err != nil {
		return domain.EmbeddingBatch{}, m.err
	}
	out := make([]domain.Embedding, len(texts))
	for i, t := range texts {
		out[i] = domain.Embedding{ID: i, Vector: m.vector, Text: t}
	}
	return domain.EmbeddingBatch{
		Embeddings:   out,
		PromptTokens: m.tokensPerText * len(texts),
		TotalTokens:  m.tokensPerText * len(texts),
	}, nil
}

// memStore is an in-memory store with optional injected failures.
type memStore struct {
	data   map[string][]byte
	ttl    time.Duration
	getErr error
	setErr error
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) MGet(_ context.Context, keys []string) ([][]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = m.data[k]
	}
	return out, nil
}

func (m *memStore) MSetWithTTL(_ context.Context, items []db.KVItem, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.ttl = ttl
	for _, it := range items {
		m.data[it.Key] = it.Value
	}
	return nil
}

func newTestCachedEmbedder(t *testing.T, inner *mockEmbedder) (*CachedEmbedder, *memStore) {
	t.Helper()
	ms := newMemStore()
	ce := New(inner, ms, time.Hour, nil, zap.NewNop())
	return ce, ms
}
