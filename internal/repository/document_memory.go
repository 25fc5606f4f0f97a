package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/futig/mini-rag/internal/entity"
	"github.com/google/uuid"
)

var _ DocumentRepository = &DocumentMemory{}

// DocumentMemory keeps the registry in process memory; it is used when no database is configured
type DocumentMemory struct {
	mu   sync.RWMutex
	docs []entity.Document
	now  func() time.Time
}

func NewDocumentMemory() *DocumentMemory {
	return &DocumentMemory{now: time.Now}
}

func (r *DocumentMemory) Save(_ context.Context, doc entity.Document) (*entity.Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = r.now().UTC()
	}

	r.mu.Lock()
	r.docs = append(r.docs, doc)
	r.mu.Unlock()

	return &doc, nil
}

func (r *DocumentMemory) List(_ context.Context) ([]*entity.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]*entity.Document, 0, len(r.docs))
	// newest first; records saved later win ties
	for i := len(r.docs) - 1; i >= 0; i-- {
		d := r.docs[i]
		docs = append(docs, &d)
	}
	slices.SortStableFunc(docs, func(a, b *entity.Document) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return docs, nil
}

func (r *DocumentMemory) Clear(_ context.Context) error {
	r.mu.Lock()
	r.docs = nil
	r.mu.Unlock()

	return nil
}
