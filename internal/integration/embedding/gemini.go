package embedding

import (
	"context"
	"fmt"
	"net/http"

	"github.com/futig/mini-rag/internal/config"
	"github.com/futig/mini-rag/internal/entity"
	"github.com/futig/mini-rag/internal/integration/common"
	"github.com/futig/mini-rag/internal/pkg/retry"
	pkghttp "github.com/futig/mini-rag/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Gemini accepts at most this many requests in one batchEmbedContents call
const geminiMaxBatch = 100

// GeminiConnector embeds text with the Gemini embedContent API
type GeminiConnector struct {
	config    config.EmbeddingConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewGeminiConnector(
	cfg config.EmbeddingConfig,
	logger *zap.Logger,
) *GeminiConnector {
	return &GeminiConnector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger, pkghttp.WithAPIKeyHeader("x-goog-api-key", cfg.APIKey)),
		config:    cfg,
		logger:    logger,
	}
}

func (c *GeminiConnector) Dimension() int {
	return c.config.Dimension
}

// Embed returns the embedding of a single text
// POST /models/{model}:embedContent
func (c *GeminiConnector) Embed(ctx context.Context, text string) ([]float32, error) {
	endpoint := fmt.Sprintf("/models/%s:embedContent", c.config.Model)
	req := c.request(text)

	resp, err := retry.Do(ctx, c.config.Retry, pkghttp.IsRetryable, func() (*entity.GeminiEmbedContentResponse, error) {
		var resp entity.GeminiEmbedContentResponse
		if err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	if err := checkDimension(resp.Embedding.Values, c.config.Dimension); err != nil {
		return nil, err
	}

	return resp.Embedding.Values, nil
}

// EmbedBatch embeds texts preserving their order
// POST /models/{model}:batchEmbedContents
func (c *GeminiConnector) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	endpoint := fmt.Sprintf("/models/%s:batchEmbedContents", c.config.Model)
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += geminiMaxBatch {
		end := min(start+geminiMaxBatch, len(texts))

		batch := entity.GeminiBatchEmbedRequest{
			Requests: make([]entity.GeminiEmbedContentRequest, 0, end-start),
		}
		for _, text := range texts[start:end] {
			batch.Requests = append(batch.Requests, c.request(text))
		}

		ctxzap.Debug(ctx, "embedding batch via Gemini",
			zap.Int("from", start),
			zap.Int("count", end-start),
		)

		resp, err := retry.Do(ctx, c.config.Retry, pkghttp.IsRetryable, func() (*entity.GeminiBatchEmbedResponse, error) {
			var resp entity.GeminiBatchEmbedResponse
			if err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, batch, &resp); err != nil {
				return nil, err
			}
			return &resp, nil
		})
		if err != nil {
			return nil, fmt.Errorf("batch embed contents: %w", err)
		}

		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("batch embed contents: got %d embeddings for %d texts", len(resp.Embeddings), end-start)
		}

		for _, e := range resp.Embeddings {
			if err := checkDimension(e.Values, c.config.Dimension); err != nil {
				return nil, err
			}
			vectors = append(vectors, e.Values)
		}
	}

	return vectors, nil
}

func (c *GeminiConnector) request(text string) entity.GeminiEmbedContentRequest {
	return entity.GeminiEmbedContentRequest{
		Model: "models/" + c.config.Model,
		Content: entity.GeminiContent{
			Parts: []entity.GeminiPart{{Text: text}},
		},
	}
}

func checkDimension(vector []float32, want int) error {
	if len(vector) != want {
		return fmt.Errorf("%w: got %d, want %d", entity.ErrDimensionMismatch, len(vector), want)
	}
	return nil
}
