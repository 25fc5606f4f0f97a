package rag

import (
	"github.com/futig/mini-rag/internal/entity"
)

func toQueryRequest(req *entity.ChatRequest) *entity.QueryRequest {
	q := &entity.QueryRequest{
		Query:   req.Query,
		History: req.History,
	}
	if req.Source != nil {
		q.Source = *req.Source
	}
	return q
}

// toResponseBody returns the body for whichever path served the query
func toResponseBody(out *entity.QueryOutcome) any {
	if out.Route == entity.RouteSummarize {
		return out.Summary
	}
	return out.Answer
}
