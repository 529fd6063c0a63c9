package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/chatdesk/internal/db"
	"github.com/kailas-cloud/chatdesk/internal/domain"
)

var cacheKeyPrefix = db.KeyPrefix + "emb_cache:"

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	MSetWithTTL(ctx context.Context, items []db.KVItem, ttl time.Duration) error
}

// Compile-time check: CachedEmbedder is a drop-in domain.Embedder.
var _ domain.Embedder = (*CachedEmbedder)(nil)

// CachedEmbedder caches chunk embeddings in a key-value store.
type CachedEmbedder struct {
	inner      domain.Embedder
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Embedder,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEmbedder{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Model returns the inner embedder's model.
func (c *CachedEmbedder) Model() string { return c.inner.Model() }

// Embeddings serves cached chunks from the store and embeds only the misses
// in a single inner call. Token counts cover the misses only.
// Store failures degrade to a full miss; they never fail the call.
func (c *CachedEmbedder) Embeddings(ctx context.Context, texts []string) (domain.EmbeddingBatch, error) {
	if len(texts) == 0 {
		return domain.EmbeddingBatch{}, nil
	}

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = c.cacheKey(t)
	}

	cached, err := c.store.MGet(ctx, keys)
	if err != nil {
		c.logger.Warn("Failed to read embedding cache", zap.Int("keys", len(keys)), zap.Error(err))
	}
	if len(cached) != len(keys) {
		cached = make([][]byte, len(keys))
	}

	out := make([]domain.Embedding, len(texts))
	var missIdx []int
	var missTexts []string
	for i, data := range cached {
		if vec, ok := c.decode(keys[i], data); ok {
			out[i] = domain.Embedding{ID: i, Vector: vec, Text: texts[i]}
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, texts[i])
	}

	c.incCache("hit", len(texts)-len(missIdx))
	c.incCache("miss", len(missIdx))

	if len(missIdx) == 0 {
		return domain.EmbeddingBatch{Embeddings: out}, nil
	}

	fresh, err := c.inner.Embeddings(ctx, missTexts)
	if err != nil {
		return domain.EmbeddingBatch{}, fmt.Errorf("embed texts: %w", err)
	}
	if len(fresh.Embeddings) != len(missIdx) {
		return domain.EmbeddingBatch{}, fmt.Errorf("%w: expected %d embeddings, got %d",
			domain.ErrGatewayError, len(missIdx), len(fresh.Embeddings))
	}

	items := make([]db.KVItem, len(missIdx))
	for j, e := range fresh.Embeddings {
		i := missIdx[j]
		out[i] = domain.Embedding{ID: i, Vector: e.Vector, Text: texts[i]}
		items[j] = db.KVItem{Key: keys[i], Value: vectorToCacheBytes(e.Vector)}
	}
	if err := c.store.MSetWithTTL(ctx, items, c.ttl); err != nil {
		c.logger.Warn("Failed to cache embeddings", zap.Int("keys", len(items)), zap.Error(err))
	}

	return domain.EmbeddingBatch{
		Embeddings:   out,
		PromptTokens: fresh.PromptTokens,
		TotalTokens:  fresh.TotalTokens,
	}, nil
}

func (c *CachedEmbedder) incCache(result string, n int) {
	if c.cacheTotal != nil && n > 0 {
		c.cacheTotal.WithLabelValues(result).Add(float64(n))
	}
}

// cacheKey includes the model so that switching models never serves stale vectors.
func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(c.inner.Model() + "|" + text))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) decode(key string, data []byte) ([]float32, bool) {
	if len(data) == 0 {
		return nil, false
	}
	vec, err := bytesToVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func vectorToCacheBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
