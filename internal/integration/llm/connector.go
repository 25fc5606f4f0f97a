package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/futig/mini-rag/internal/config"
	"github.com/futig/mini-rag/internal/entity"
	"github.com/futig/mini-rag/internal/integration/common"
	"github.com/futig/mini-rag/internal/pkg/retry"
	pkghttp "github.com/futig/mini-rag/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

var errEmptyGeneration = errors.New("model returned no text")

// GeminiConnector generates text with the Gemini generateContent API
type GeminiConnector struct {
	config    config.LLMConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewGeminiConnector(
	cfg config.LLMConfig,
	logger *zap.Logger,
) *GeminiConnector {
	return &GeminiConnector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger, pkghttp.WithAPIKeyHeader("x-goog-api-key", cfg.APIKey)),
		config:    cfg,
		logger:    logger,
	}
}

// Generate sends a single-turn prompt and returns the trimmed text of the first candidate
// POST /models/{model}:generateContent
func (c *GeminiConnector) Generate(ctx context.Context, prompt string) (string, error) {
	ctxzap.Info(ctx, "generating text via Gemini", zap.String("model", c.config.Model))

	endpoint := fmt.Sprintf("/models/%s:generateContent", c.config.Model)
	req := entity.GeminiGenerateRequest{
		Contents: []entity.GeminiContent{{
			Role:  "user",
			Parts: []entity.GeminiPart{{Text: prompt}},
		}},
	}

	resp, err := retry.Do(ctx, c.config.Retry, pkghttp.IsRetryable, func() (*entity.GeminiGenerateResponse, error) {
		var resp entity.GeminiGenerateResponse
		if err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
	if err != nil {
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("generate content: %w", errEmptyGeneration)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("generate content (finish reason %q): %w", resp.Candidates[0].FinishReason, errEmptyGeneration)
	}

	ctxzap.Info(ctx, "text generated successfully", zap.Int("result_length", len(text)))

	return text, nil
}
