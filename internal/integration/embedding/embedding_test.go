package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/mini-rag/internal/config"
	"github.com/futig/mini-rag/internal/entity"
	"github.com/futig/mini-rag/internal/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(url string, dim int) config.EmbeddingConfig {
	return config.EmbeddingConfig{
		HTTPClientConfig: config.HTTPClientConfig{Url: url, RequestTimeout: 5 * time.Second},
		Model:            "text-embedding-004",
		APIKey:           "secret",
		Dimension:        dim,
		Retry:            retry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
	}
}

func values(dim int, v float32) []float32 {
	out := make([]float32, dim)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestGeminiConnector_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/text-embedding-004:embedContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))

		var req entity.GeminiEmbedContentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "models/text-embedding-004", req.Model)
		assert.Equal(t, "hello", req.Content.Parts[0].Text)

		json.NewEncoder(w).Encode(entity.GeminiEmbedContentResponse{
			Embedding: entity.GeminiEmbedding{Values: values(4, 0.5)},
		})
	}))
	defer srv.Close()

	c := NewGeminiConnector(testConfig(srv.URL, 4), zap.NewNop())
	vec, err := c.Embed(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, values(4, 0.5), vec)
	assert.Equal(t, 4, c.Dimension())
}

func TestGeminiConnector_DimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(entity.GeminiEmbedContentResponse{
			Embedding: entity.GeminiEmbedding{Values: values(3, 1)},
		})
	}))
	defer srv.Close()

	_, err := NewGeminiConnector(testConfig(srv.URL, 768), zap.NewNop()).Embed(context.Background(), "x")

	assert.ErrorIs(t, err, entity.ErrDimensionMismatch)
}

func TestGeminiConnector_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(entity.GeminiEmbedContentResponse{
			Embedding: entity.GeminiEmbedding{Values: values(2, 1)},
		})
	}))
	defer srv.Close()

	_, err := NewGeminiConnector(testConfig(srv.URL, 2), zap.NewNop()).Embed(context.Background(), "x")

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGeminiConnector_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewGeminiConnector(testConfig(srv.URL, 2), zap.NewNop()).Embed(context.Background(), "x")

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGeminiConnector_EmbedBatchSplitsAndKeepsOrder(t *testing.T) {
	var batches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/text-embedding-004:batchEmbedContents", r.URL.Path)
		batches.Add(1)

		var req entity.GeminiBatchEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.LessOrEqual(t, len(req.Requests), geminiMaxBatch)

		resp := entity.GeminiBatchEmbedResponse{}
		for _, rq := range req.Requests {
			resp.Embeddings = append(resp.Embeddings, entity.GeminiEmbedding{
				Values: []float32{float32(len(rq.Content.Parts[0].Text))},
			})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	texts := make([]string, 150)
	for i := range texts {
		texts[i] = string(make([]byte, i+1))
	}

	vectors, err := NewGeminiConnector(testConfig(srv.URL, 1), zap.NewNop()).EmbedBatch(context.Background(), texts)

	require.NoError(t, err)
	require.Len(t, vectors, 150)
	assert.Equal(t, int32(2), batches.Load())
	for i, v := range vectors {
		assert.Equal(t, float32(i+1), v[0])
	}
}

func TestLocalConnector_EmbedBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "all-minilm", req.Model)

		// answer out of order; the connector must place vectors by index
		type item struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		data := make([]item, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, item{Object: "embedding", Index: i, Embedding: []float32{float32(i), 0, 0}})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data, "model": req.Model})
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL, 3)
	cfg.Model = "all-minilm"
	c := NewLocalConnector(cfg, zap.NewNop())

	vectors, err := c.EmbedBatch(context.Background(), []string{"a", "b", "c"})

	require.NoError(t, err)
	require.Len(t, vectors, 3)
	for i, v := range vectors {
		assert.Equal(t, float32(i), v[0])
	}

	single, err := c.Embed(context.Background(), "a")
	require.NoError(t, err)
	assert.Len(t, single, 3)
}

func TestMockConnector_Deterministic(t *testing.T) {
	m := NewMockConnector(8, zap.NewNop())
	ctx := context.Background()

	a1, _ := m.Embed(ctx, "retrieval augmented generation")
	a2, _ := m.Embed(ctx, "retrieval augmented generation")
	b, _ := m.Embed(ctx, "something else")

	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
	assert.Len(t, a1, 8)

	batch, err := m.EmbedBatch(ctx, []string{"retrieval augmented generation", "something else"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{a1, b}, batch)
}

type countingProvider struct {
	*MockConnector
	calls int
}

func (p *countingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.calls++
	return p.MockConnector.Embed(ctx, text)
}

func TestCached_Embed(t *testing.T) {
	inner := &countingProvider{MockConnector: NewMockConnector(4, zap.NewNop())}
	c := NewCached(inner, time.Minute)
	ctx := context.Background()

	first, err := c.Embed(ctx, "what is rag?")
	require.NoError(t, err)
	second, err := c.Embed(ctx, "what is rag?")
	require.NoError(t, err)
	_, err = c.Embed(ctx, "another question")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 4, c.Dimension())
}
