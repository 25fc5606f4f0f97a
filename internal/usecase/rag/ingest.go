package rag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/futig/mini-rag/internal/entity"
	"github.com/futig/mini-rag/internal/pkg/chunker"
	"github.com/futig/mini-rag/internal/pkg/extractor"
	"github.com/futig/mini-rag/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// SeedSource labels the built-in explainer texts
const SeedSource = "manual_seed"

var seedTexts = []string{
	"Retrieval-Augmented Generation (RAG) combines information retrieval with language models to generate grounded responses.",
	"In RAG systems, documents are stored in a vector database and retrieved at query time.",
}

// IngestFile extracts, chunks, embeds and stores the file at path under its base name.
// A file whose content cannot be parsed is ingested as empty text
func (uc *Usecase) IngestFile(ctx context.Context, path string) (int, error) {
	source := filepath.Base(path)
	ctx = logger.AddFields(logger.WithAction(ctx, "ingest_file"), zap.String("source", source))

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat file: %w", err)
	}

	text, err := extractor.Extract(ctx, path)
	if err != nil {
		if !errors.Is(err, entity.ErrExtraction) {
			return 0, err
		}
		ctxzap.Warn(ctx, "text extraction failed, ingesting as empty", zap.Error(err))
		text = ""
	}

	return uc.ingest(ctx, source, text, info.Size())
}

// IngestText chunks, embeds and stores raw text under source
func (uc *Usecase) IngestText(ctx context.Context, source, text string) (int, error) {
	if source == "" {
		return 0, fmt.Errorf("%w: source", entity.ErrMissingField)
	}
	ctx = logger.AddFields(logger.WithAction(ctx, "ingest_text"), zap.String("source", source))

	return uc.ingest(ctx, source, text, int64(len(text)))
}

// Seed stores the built-in explainer texts, one point per text
func (uc *Usecase) Seed(ctx context.Context) (int, error) {
	ctx = logger.WithAction(ctx, "seed")

	chunks := make([]entity.Chunk, 0, len(seedTexts))
	var size int64
	for i, text := range seedTexts {
		chunks = append(chunks, entity.Chunk{Text: text, Source: SeedSource, Index: i})
		size += int64(len(text))
	}

	n, err := uc.store(ctx, chunks)
	if err != nil {
		return 0, err
	}

	uc.record(ctx, SeedSource, n, size)

	return n, nil
}

func (uc *Usecase) ingest(ctx context.Context, source, text string, size int64) (int, error) {
	parts := chunker.Split(text, uc.cfg.ChunkSize)

	chunks := make([]entity.Chunk, 0, len(parts))
	for i, part := range parts {
		chunks = append(chunks, entity.Chunk{Text: part, Source: source, Index: i})
	}

	n, err := uc.store(ctx, chunks)
	if err != nil {
		return 0, err
	}

	uc.record(ctx, source, n, size)

	return n, nil
}

// store embeds chunks in one batch and upserts one point per chunk
func (uc *Usecase) store(ctx context.Context, chunks []entity.Chunk) (int, error) {
	if len(chunks) == 0 {
		ctxzap.Info(ctx, "no chunks to store")
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := uc.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	points := make([]entity.Point, len(chunks))
	for i, c := range chunks {
		points[i] = entity.Point{
			ID:     uuid.NewString(),
			Vector: vectors[i],
			Payload: entity.Payload{
				Text:    c.Text,
				Source:  c.Source,
				ChunkID: c.Index,
			},
		}
	}

	if err := uc.index.Upsert(ctx, points); err != nil {
		return 0, fmt.Errorf("upsert points: %w", err)
	}

	ctxzap.Info(ctx, "chunks stored", zap.Int("chunks_added", len(points)))

	return len(points), nil
}

// record notes the ingestion in the registry; failures only get logged
func (uc *Usecase) record(ctx context.Context, source string, chunks int, size int64) {
	_, err := uc.documents.Save(ctx, entity.Document{
		Source:     source,
		ChunkCount: chunks,
		SizeBytes:  size,
	})
	if err != nil {
		ctxzap.Warn(ctx, "failed to record document", zap.Error(err))
	}
}
