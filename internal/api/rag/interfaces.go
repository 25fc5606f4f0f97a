package rag

import (
	"context"
	"mime/multipart"

	"github.com/futig/mini-rag/internal/entity"
)

type RAGUsecase interface {
	IngestFile(ctx context.Context, path string) (int, error)
	AnswerQuery(ctx context.Context, req *entity.QueryRequest) (*entity.QueryOutcome, error)
	Summarize(ctx context.Context, source string) (*entity.Summary, error)
	ExportSummary(ctx context.Context, source string, format entity.ResultFormat) (*entity.ExportedFile, error)
	ListDocuments(ctx context.Context) ([]*entity.Document, error)
	Clear(ctx context.Context) error
}

type UploadValidator interface {
	ValidateUpload(fh *multipart.FileHeader) error
}
