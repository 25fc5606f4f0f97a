package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/mini-rag/internal/entity"
	"github.com/futig/mini-rag/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Route decides how a query is served: summarization needs both a trigger phrase and a source
func (uc *Usecase) Route(req *entity.QueryRequest) entity.Route {
	if req.Source == "" {
		return entity.RouteRetrieve
	}

	q := strings.ToLower(req.Query)
	for _, trigger := range uc.prompts.triggers {
		if strings.Contains(q, trigger) {
			return entity.RouteSummarize
		}
	}

	return entity.RouteRetrieve
}

// AnswerQuery routes the query and returns either a summary or a grounded answer
func (uc *Usecase) AnswerQuery(ctx context.Context, req *entity.QueryRequest) (*entity.QueryOutcome, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("%w: query", entity.ErrMissingField)
	}

	route := uc.Route(req)
	ctx = logger.AddFields(ctx, zap.String("route", string(route)))

	ctxzap.Info(ctx, "query routed",
		zap.Bool("has_source", req.Source != ""),
		zap.Int("history_len", len(req.History)),
	)

	if route == entity.RouteSummarize {
		summary, err := uc.Summarize(ctx, req.Source)
		if err != nil {
			return nil, err
		}
		return &entity.QueryOutcome{Route: route, Summary: summary}, nil
	}

	answer, err := uc.Retrieve(ctx, req)
	if err != nil {
		return nil, err
	}

	return &entity.QueryOutcome{Route: route, Answer: answer}, nil
}

// Retrieve embeds the query, searches the index and synthesizes an answer from the best contexts
func (uc *Usecase) Retrieve(ctx context.Context, req *entity.QueryRequest) (*entity.Answer, error) {
	ctx = logger.WithAction(ctx, "retrieve")

	vector, err := uc.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := uc.index.Query(ctx, vector, uc.cfg.TopK, entity.NewSourceFilter(req.Source))
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	hits = uc.relevant(hits)

	if len(hits) == 0 {
		ctxzap.Info(ctx, "no relevant contexts found")
		return &entity.Answer{
			Query:       req.Query,
			FinalAnswer: NoAnswer,
			TopContexts: []entity.Payload{},
		}, nil
	}

	contexts := make([]entity.Payload, 0, uc.cfg.ContextSize)
	for _, h := range hits[:min(uc.cfg.ContextSize, len(hits))] {
		contexts = append(contexts, h.Payload)
	}

	return &entity.Answer{
		Query:       req.Query,
		FinalAnswer: uc.synthesize(ctx, req, contexts),
		TopContexts: contexts,
	}, nil
}

// synthesize asks the model for an answer and falls back to the best context verbatim
func (uc *Usecase) synthesize(ctx context.Context, req *entity.QueryRequest, contexts []entity.Payload) string {
	texts := make([]string, len(contexts))
	for i, c := range contexts {
		texts[i] = c.Text
	}

	prompt, err := uc.prompts.answerPrompt(req.Query, texts, lastTurns(req.History, uc.cfg.HistoryTurns))
	if err != nil {
		ctxzap.Warn(ctx, "failed to render answer prompt, using top context", zap.Error(err))
		return contexts[0].Text
	}

	answer, err := uc.generator.Generate(ctx, prompt)
	if err != nil {
		ctxzap.Warn(ctx, "answer synthesis failed, using top context", zap.Error(err))
		return contexts[0].Text
	}

	return strings.TrimSpace(answer)
}

func (uc *Usecase) relevant(hits []entity.ScoredPoint) []entity.ScoredPoint {
	if uc.cfg.RelevanceThreshold <= 0 {
		return hits
	}

	kept := hits[:0:0]
	for _, h := range hits {
		if h.Score >= uc.cfg.RelevanceThreshold {
			kept = append(kept, h)
		}
	}

	return kept
}

func lastTurns(history []string, n int) []string {
	if n <= 0 {
		return nil
	}
	if len(history) > n {
		return history[len(history)-n:]
	}
	return history
}
