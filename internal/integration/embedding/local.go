package embedding

import (
	"context"
	"fmt"

	"github.com/futig/mini-rag/internal/config"
	"github.com/futig/mini-rag/internal/integration/common"
	"github.com/futig/mini-rag/internal/pkg/retry"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// LocalConnector embeds text with a locally hosted model behind an
// OpenAI-compatible /embeddings endpoint (Ollama, text-embeddings-inference)
type LocalConnector struct {
	config config.EmbeddingConfig
	client *openai.Client
	logger *zap.Logger
}

func NewLocalConnector(
	cfg config.EmbeddingConfig,
	logger *zap.Logger,
) *LocalConnector {
	return &LocalConnector{
		client: common.NewOpenAIClient(cfg.HTTPClientConfig, cfg.APIKey),
		config: cfg,
		logger: logger,
	}
}

func (c *LocalConnector) Dimension() int {
	return c.config.Dimension
}

func (c *LocalConnector) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *LocalConnector) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctxzap.Debug(ctx, "embedding via local model",
		zap.String("model", c.config.Model),
		zap.Int("count", len(texts)),
	)

	resp, err := retry.Do(ctx, c.config.Retry, common.IsRetryableOpenAI, func() (openai.EmbeddingResponse, error) {
		return c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: texts,
			Model: openai.EmbeddingModel(c.config.Model),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("create embeddings: got %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("create embeddings: index %d out of range", d.Index)
		}
		if err := checkDimension(d.Embedding, c.config.Dimension); err != nil {
			return nil, err
		}
		vectors[d.Index] = d.Embedding
	}

	return vectors, nil
}
