package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector produces deterministic unit vectors derived from the text bytes.
// Equal texts map to equal vectors; nothing about semantic similarity is promised
type MockConnector struct {
	dimension int
	logger    *zap.Logger
}

func NewMockConnector(dimension int, logger *zap.Logger) *MockConnector {
	if dimension <= 0 {
		dimension = 16
	}
	return &MockConnector{
		dimension: dimension,
		logger:    logger,
	}
}

func (m *MockConnector) Dimension() int {
	return m.dimension
}

func (m *MockConnector) Embed(ctx context.Context, text string) ([]float32, error) {
	ctxzap.Debug(ctx, "[MOCK] embedding text", zap.Int("text_length", len(text)))
	return m.vector(text), nil
}

func (m *MockConnector) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctxzap.Debug(ctx, "[MOCK] embedding batch", zap.Int("count", len(texts)))

	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = m.vector(t)
	}
	return vectors, nil
}

func (m *MockConnector) vector(text string) []float32 {
	vec := make([]float32, m.dimension)

	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	var norm float64
	for i := range vec {
		// xorshift keeps neighbouring components uncorrelated
		seed ^= seed << 13
		seed ^= seed >> 7
		seed ^= seed << 17
		v := float64(seed%2001)/1000.0 - 1.0
		vec[i] = float32(v)
		norm += v * v
	}

	if norm == 0 {
		vec[0] = 1
		return vec
	}

	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}
