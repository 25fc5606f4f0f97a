package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/mini-rag/internal/config"
	"github.com/futig/mini-rag/internal/integration/common"
	"github.com/futig/mini-rag/internal/pkg/retry"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIConnector generates text through any OpenAI-compatible chat completions endpoint
type OpenAIConnector struct {
	config config.LLMConfig
	client *openai.Client
	logger *zap.Logger
}

func NewOpenAIConnector(
	cfg config.LLMConfig,
	logger *zap.Logger,
) *OpenAIConnector {
	return &OpenAIConnector{
		client: common.NewOpenAIClient(cfg.HTTPClientConfig, cfg.APIKey),
		config: cfg,
		logger: logger,
	}
}

func (c *OpenAIConnector) Generate(ctx context.Context, prompt string) (string, error) {
	ctxzap.Info(ctx, "generating text via OpenAI-compatible API", zap.String("model", c.config.Model))

	req := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	resp, err := retry.Do(ctx, c.config.Retry, common.IsRetryableOpenAI, func() (openai.ChatCompletionResponse, error) {
		return c.client.CreateChatCompletion(ctx, req)
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: %w", errEmptyGeneration)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("chat completion: %w", errEmptyGeneration)
	}

	ctxzap.Info(ctx, "text generated successfully", zap.Int("result_length", len(text)))

	return text, nil
}
