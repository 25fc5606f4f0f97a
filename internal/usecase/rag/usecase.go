package rag

import (
	"context"
	"fmt"
	"slices"

	"github.com/futig/mini-rag/internal/config"
	"github.com/futig/mini-rag/internal/entity"
	"github.com/futig/mini-rag/internal/repository"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	// NoAnswer is returned when retrieval finds nothing to ground an answer on
	NoAnswer = "I do not know based on the provided context."
	// NoContent is the summary of a source with no stored chunks
	NoContent = "No content found for this document."

	sourceField = "source"
)

// Usecase implements ingestion, question answering and collection management
type Usecase struct {
	embedder   Embedder
	generator  Generator
	index      VectorIndex
	documents  repository.DocumentRepository
	formatters FormatterFactory
	cfg        config.RAGConfig
	prompts    *promptSet
}

// NewUsecase creates a new RAG use case. It fails when a prompt template does not parse
func NewUsecase(
	embedder Embedder,
	generator Generator,
	index VectorIndex,
	documents repository.DocumentRepository,
	formatters FormatterFactory,
	cfg config.RAGConfig,
	prompts config.Prompts,
	logger *zap.Logger,
) (*Usecase, error) {
	ps, err := newPromptSet(prompts)
	if err != nil {
		return nil, err
	}
	logger.Debug("prompt templates parsed", zap.Int("summary_triggers", len(ps.triggers)))

	return &Usecase{
		embedder:   embedder,
		generator:  generator,
		index:      index,
		documents:  documents,
		formatters: formatters,
		cfg:        cfg,
		prompts:    ps,
	}, nil
}

// EnsureCollection creates the collection sized for the active embedder when it is absent
func (uc *Usecase) EnsureCollection(ctx context.Context) error {
	exists, err := uc.index.CollectionExists(ctx)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}

	if exists {
		ctxzap.Debug(ctx, "collection already exists")
		return nil
	}

	if err := uc.index.CreateCollection(ctx, uc.embedder.Dimension()); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	ctxzap.Info(ctx, "collection created", zap.Int("dimension", uc.embedder.Dimension()))

	return nil
}

// Bootstrap prepares the collection and its source index at startup
func (uc *Usecase) Bootstrap(ctx context.Context) error {
	if err := uc.EnsureCollection(ctx); err != nil {
		return err
	}

	return uc.ensureSourceIndex(ctx)
}

// Clear drops every stored point and recreates an empty collection
func (uc *Usecase) Clear(ctx context.Context) error {
	exists, err := uc.index.CollectionExists(ctx)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}

	if exists {
		if err := uc.index.DeleteCollection(ctx); err != nil {
			return fmt.Errorf("delete collection: %w", err)
		}
	}

	if err := uc.index.CreateCollection(ctx, uc.embedder.Dimension()); err != nil {
		return fmt.Errorf("recreate collection: %w", err)
	}

	if err := uc.index.CreatePayloadIndex(ctx, sourceField); err != nil {
		return fmt.Errorf("recreate source index: %w", err)
	}

	if err := uc.documents.Clear(ctx); err != nil {
		return fmt.Errorf("clear document registry: %w", err)
	}

	ctxzap.Info(ctx, "collection cleared", zap.Int("dimension", uc.embedder.Dimension()))

	return nil
}

// ListDocuments returns the ingestion registry, newest first
func (uc *Usecase) ListDocuments(ctx context.Context) ([]*entity.Document, error) {
	docs, err := uc.documents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	return docs, nil
}

func (uc *Usecase) ensureSourceIndex(ctx context.Context) error {
	fields, err := uc.index.PayloadIndexes(ctx)
	if err != nil {
		return fmt.Errorf("list payload indexes: %w", err)
	}

	if slices.Contains(fields, sourceField) {
		return nil
	}

	if err := uc.index.CreatePayloadIndex(ctx, sourceField); err != nil {
		return fmt.Errorf("create source index: %w", err)
	}

	ctxzap.Info(ctx, "payload index created", zap.String("field", sourceField))

	return nil
}
