package rag

import (
	"cmp"
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/futig/mini-rag/internal/entity"
	"github.com/futig/mini-rag/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Summarize paraphrases the leading chunks of one source
func (uc *Usecase) Summarize(ctx context.Context, source string) (*entity.Summary, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%w: source", entity.ErrMissingField)
	}
	ctx = logger.AddFields(logger.WithAction(ctx, "summarize"), zap.String("source", source))

	points, err := uc.index.Scroll(ctx, entity.NewSourceFilter(source), uc.cfg.ScrollLimit)
	if err != nil {
		return nil, fmt.Errorf("scroll chunks: %w", err)
	}

	if len(points) == 0 {
		ctxzap.Info(ctx, "no chunks stored for source")
		return &entity.Summary{Source: source, Summary: NoContent}, nil
	}

	// scroll order is storage order, not document order
	slices.SortStableFunc(points, func(a, b entity.ScoredPoint) int {
		return cmp.Compare(a.Payload.ChunkID, b.Payload.ChunkID)
	})

	texts := make([]string, 0, uc.cfg.SummaryChunks)
	for _, p := range points[:min(uc.cfg.SummaryChunks, len(points))] {
		texts = append(texts, p.Payload.Text)
	}

	prompt, err := uc.prompts.summaryPrompt(texts)
	if err != nil {
		return nil, fmt.Errorf("render summary prompt: %w", err)
	}

	summary, err := uc.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}

	ctxzap.Info(ctx, "summary generated", zap.Int("chunks_used", len(texts)))

	return &entity.Summary{Source: source, Summary: strings.TrimSpace(summary)}, nil
}

// ExportSummary renders the summary of source as a downloadable file
func (uc *Usecase) ExportSummary(ctx context.Context, source string, format entity.ResultFormat) (*entity.ExportedFile, error) {
	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, err
	}

	summary, err := uc.Summarize(ctx, source)
	if err != nil {
		return nil, err
	}

	content, err := f.Format("Summary of "+source, summary.Summary)
	if err != nil {
		return nil, fmt.Errorf("format summary: %w", err)
	}

	base := strings.TrimSuffix(source, filepath.Ext(source))

	return &entity.ExportedFile{
		Filename:    base + "_summary" + f.FileExtension(),
		ContentType: f.ContentType(),
		Content:     content,
	}, nil
}
