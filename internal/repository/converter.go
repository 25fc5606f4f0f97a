package repository

import (
	"github.com/futig/mini-rag/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// documentRow mirrors one row of the documents table
type documentRow struct {
	ID         pgtype.UUID
	Source     string
	ChunkCount int64
	SizeBytes  int64
	CreatedAt  pgtype.Timestamptz
}

func toEntityDocument(row *documentRow) *entity.Document {
	docUUID := uuid.UUID(row.ID.Bytes)

	return &entity.Document{
		ID:         docUUID.String(),
		Source:     row.Source,
		ChunkCount: int(row.ChunkCount),
		SizeBytes:  row.SizeBytes,
		CreatedAt:  row.CreatedAt.Time,
	}
}
