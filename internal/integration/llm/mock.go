package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector answers every prompt without calling a model
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

// Generate echoes the last non-empty line of the prompt so responses stay traceable in tests
func (m *MockConnector) Generate(ctx context.Context, prompt string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] generating text", zap.Int("prompt_length", len(prompt)))

	lines := strings.Split(strings.TrimSpace(prompt), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])

	return fmt.Sprintf("[MOCK] generated from %d characters of prompt ending with %q", len(prompt), last), nil
}
