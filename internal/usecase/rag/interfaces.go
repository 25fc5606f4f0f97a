package rag

import (
	"context"

	"github.com/futig/mini-rag/internal/entity"
	"github.com/futig/mini-rag/internal/pkg/formatter"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type VectorIndex interface {
	CollectionExists(ctx context.Context) (bool, error)
	CreateCollection(ctx context.Context, dimension int) error
	DeleteCollection(ctx context.Context) error
	PayloadIndexes(ctx context.Context) ([]string, error)
	CreatePayloadIndex(ctx context.Context, field string) error
	Upsert(ctx context.Context, points []entity.Point) error
	Query(ctx context.Context, vector []float32, topK int, filter *entity.Filter) ([]entity.ScoredPoint, error)
	Scroll(ctx context.Context, filter *entity.Filter, limit int) ([]entity.ScoredPoint, error)
}

type FormatterFactory interface {
	Create(format entity.ResultFormat) (formatter.Formatter, error)
}
