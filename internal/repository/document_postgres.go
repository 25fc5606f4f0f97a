package repository

import (
	"context"
	"fmt"

	"github.com/futig/mini-rag/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ DocumentRepository = &DocumentPostgres{}

const (
	insertDocumentQuery = `
INSERT INTO documents (id, source, chunk_count, size_bytes)
VALUES ($1, $2, $3, $4)
RETURNING id, source, chunk_count, size_bytes, created_at`

	listDocumentsQuery = `
SELECT id, source, chunk_count, size_bytes, created_at
FROM documents
ORDER BY created_at DESC, id`

	clearDocumentsQuery = `DELETE FROM documents`
)

// DocumentPostgres implements DocumentRepository using PostgreSQL
type DocumentPostgres struct {
	db *pgxpool.Pool
}

func NewDocumentPostgres(db *pgxpool.Pool) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

func (r *DocumentPostgres) Save(ctx context.Context, doc entity.Document) (*entity.Document, error) {
	docID := uuid.New()
	if doc.ID != "" {
		parsed, err := uuid.Parse(doc.ID)
		if err != nil {
			return nil, fmt.Errorf("parse document ID: %w", err)
		}
		docID = parsed
	}

	var row documentRow
	err := r.db.QueryRow(ctx, insertDocumentQuery,
		pgtype.UUID{Bytes: docID, Valid: true},
		doc.Source,
		int64(doc.ChunkCount),
		doc.SizeBytes,
	).Scan(&row.ID, &row.Source, &row.ChunkCount, &row.SizeBytes, &row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	return toEntityDocument(&row), nil
}

func (r *DocumentPostgres) List(ctx context.Context) ([]*entity.Document, error) {
	rows, err := r.db.Query(ctx, listDocumentsQuery)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*entity.Document, 0)
	for rows.Next() {
		var row documentRow
		if err := rows.Scan(&row.ID, &row.Source, &row.ChunkCount, &row.SizeBytes, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, toEntityDocument(&row))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}

func (r *DocumentPostgres) Clear(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, clearDocumentsQuery); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}

	return nil
}
