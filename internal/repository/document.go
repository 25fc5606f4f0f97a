package repository

import (
	"context"

	"github.com/futig/mini-rag/internal/entity"
)

// DocumentRepository records ingestions. It is informational: the vector index stays the source of truth
type DocumentRepository interface {
	Save(ctx context.Context, doc entity.Document) (*entity.Document, error)
	// List returns records newest first
	List(ctx context.Context) ([]*entity.Document, error)
	Clear(ctx context.Context) error
}
