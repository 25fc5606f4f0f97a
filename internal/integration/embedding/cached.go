package embedding

import (
	"context"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Provider is the contract shared by every embedding backend
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Cached memoizes single-text embeddings, which is what repeated queries hit.
// Batch calls made during ingestion go straight to the wrapped provider
type Cached struct {
	next  Provider
	cache *cache.Cache
}

func NewCached(next Provider, ttl time.Duration) *Cached {
	return &Cached{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *Cached) Dimension() int {
	return c.next.Dimension()
}

func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		ctxzap.Debug(ctx, "embedding cache hit", zap.Int("text_length", len(text)))
		return v.([]float32), nil
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(text, vec)
	return vec, nil
}

func (c *Cached) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return c.next.EmbedBatch(ctx, texts)
}
