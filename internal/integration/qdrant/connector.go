package qdrant

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/futig/mini-rag/internal/config"
	"github.com/futig/mini-rag/internal/entity"
	"github.com/futig/mini-rag/internal/integration/common"
	"github.com/futig/mini-rag/internal/pkg/retry"
	pkghttp "github.com/futig/mini-rag/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	distanceCosine = "Cosine"
	schemaKeyword  = "keyword"
)

// Connector talks to one Qdrant collection over the REST API
type Connector struct {
	config    config.QdrantConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.QdrantConfig,
	logger *zap.Logger,
) *Connector {
	var auth pkghttp.HttpOpts
	if cfg.APIKey != "" {
		auth = pkghttp.WithAPIKeyHeader("api-key", cfg.APIKey)
	}

	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger, auth),
		config:    cfg,
		logger:    logger,
	}
}

func (c *Connector) Collection() string {
	return c.config.Collection
}

// CollectionExists reports whether the collection is present
// GET /collections/{collection}/exists
func (c *Connector) CollectionExists(ctx context.Context) (bool, error) {
	var resp entity.QdrantExistsResponse
	if err := c.do(ctx, http.MethodGet, "/exists", nil, &resp); err != nil {
		return false, fmt.Errorf("check collection exists: %w", err)
	}

	return resp.Result.Exists, nil
}

// CreateCollection creates the collection with cosine distance
// PUT /collections/{collection}
func (c *Connector) CreateCollection(ctx context.Context, dimension int) error {
	ctxzap.Info(ctx, "creating qdrant collection",
		zap.String("collection", c.config.Collection),
		zap.Int("dimension", dimension),
	)

	req := entity.QdrantCreateCollectionRequest{
		Vectors: entity.QdrantVectorParams{Size: dimension, Distance: distanceCosine},
	}
	if err := c.do(ctx, http.MethodPut, "", req, nil); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	return nil
}

// DeleteCollection drops the collection with all its points
// DELETE /collections/{collection}
func (c *Connector) DeleteCollection(ctx context.Context) error {
	ctxzap.Info(ctx, "deleting qdrant collection", zap.String("collection", c.config.Collection))

	if err := c.do(ctx, http.MethodDelete, "", nil, nil); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}

	return nil
}

// PayloadIndexes lists the payload fields that carry an index
// GET /collections/{collection}
func (c *Connector) PayloadIndexes(ctx context.Context) ([]string, error) {
	var resp entity.QdrantCollectionInfoResponse
	if err := c.do(ctx, http.MethodGet, "", nil, &resp); err != nil {
		return nil, fmt.Errorf("get collection info: %w", err)
	}

	fields := make([]string, 0, len(resp.Result.PayloadSchema))
	for field := range resp.Result.PayloadSchema {
		fields = append(fields, field)
	}

	return fields, nil
}

// CreatePayloadIndex creates a keyword index on a payload field
// PUT /collections/{collection}/index
func (c *Connector) CreatePayloadIndex(ctx context.Context, field string) error {
	ctxzap.Info(ctx, "creating payload index", zap.String("field", field))

	req := entity.QdrantCreateIndexRequest{FieldName: field, FieldSchema: schemaKeyword}
	if err := c.do(ctx, http.MethodPut, "/index", req, nil); err != nil {
		return fmt.Errorf("create payload index: %w", err)
	}

	return nil
}

// Upsert writes points and waits until they are searchable
// PUT /collections/{collection}/points?wait=true
func (c *Connector) Upsert(ctx context.Context, points []entity.Point) error {
	req := entity.QdrantUpsertRequest{Points: make([]entity.QdrantPoint, 0, len(points))}
	for _, p := range points {
		req.Points = append(req.Points, entity.QdrantPoint{ID: p.ID, Vector: p.Vector, Payload: p.Payload})
	}

	ctxzap.Debug(ctx, "upserting points", zap.Int("count", len(points)))

	if err := c.do(ctx, http.MethodPut, "/points?wait=true", req, nil); err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}

	return nil
}

// Query returns the topK nearest points, best first
// POST /collections/{collection}/points/query
func (c *Connector) Query(ctx context.Context, vector []float32, topK int, filter *entity.Filter) ([]entity.ScoredPoint, error) {
	req := entity.QdrantQueryRequest{
		Query:       vector,
		Limit:       topK,
		WithPayload: true,
		Filter:      toQdrantFilter(filter),
	}

	var resp entity.QdrantQueryResponse
	if err := c.do(ctx, http.MethodPost, "/points/query", req, &resp); err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}

	return fromQdrantPoints(resp.Result.Points), nil
}

// Scroll returns up to limit points in storage order
// POST /collections/{collection}/points/scroll
func (c *Connector) Scroll(ctx context.Context, filter *entity.Filter, limit int) ([]entity.ScoredPoint, error) {
	req := entity.QdrantScrollRequest{
		Filter:      toQdrantFilter(filter),
		Limit:       limit,
		WithPayload: true,
		WithVector:  false,
	}

	var resp entity.QdrantScrollResponse
	if err := c.do(ctx, http.MethodPost, "/points/scroll", req, &resp); err != nil {
		return nil, fmt.Errorf("scroll points: %w", err)
	}

	return fromQdrantPoints(resp.Result.Points), nil
}

func (c *Connector) do(ctx context.Context, method, suffix string, reqBody, respBody any) error {
	endpoint := "/collections/" + url.PathEscape(c.config.Collection) + suffix

	_, err := retry.Do(ctx, c.config.Retry, pkghttp.IsRetryable, func() (struct{}, error) {
		return struct{}{}, c.connector.DoRequest(ctx, method, endpoint, reqBody, respBody)
	})

	return err
}

func toQdrantFilter(filter *entity.Filter) *entity.QdrantFilter {
	if filter == nil || filter.Source == "" {
		return nil
	}

	return &entity.QdrantFilter{
		Must: []entity.QdrantFieldCondition{
			{Key: "source", Match: entity.QdrantMatch{Value: filter.Source}},
		},
	}
}

func fromQdrantPoints(in []entity.QdrantScoredPoint) []entity.ScoredPoint {
	out := make([]entity.ScoredPoint, 0, len(in))
	for _, p := range in {
		out = append(out, entity.ScoredPoint{
			ID:      pointID(p.ID),
			Score:   p.Score,
			Payload: p.Payload,
		})
	}

	return out
}

// pointID normalizes Qdrant ids, which are either uuid strings or unsigned integers
func pointID(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
