package qdrant

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/futig/mini-rag/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector is an in-memory single-collection index with cosine similarity
type MockConnector struct {
	mu        sync.RWMutex
	name      string
	exists    bool
	dimension int
	points    []entity.Point
	byID      map[string]int
	indexes   map[string]struct{}
	logger    *zap.Logger
}

func NewMockConnector(collection string, logger *zap.Logger) *MockConnector {
	return &MockConnector{
		name:    collection,
		byID:    make(map[string]int),
		indexes: make(map[string]struct{}),
		logger:  logger,
	}
}

func (m *MockConnector) Collection() string {
	return m.name
}

func (m *MockConnector) CollectionExists(ctx context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.exists, nil
}

func (m *MockConnector) CreateCollection(ctx context.Context, dimension int) error {
	ctxzap.Info(ctx, "[MOCK] creating collection", zap.String("collection", m.name), zap.Int("dimension", dimension))

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.exists {
		return fmt.Errorf("create collection: collection %q already exists", m.name)
	}
	m.exists = true
	m.dimension = dimension

	return nil
}

func (m *MockConnector) DeleteCollection(ctx context.Context) error {
	ctxzap.Info(ctx, "[MOCK] deleting collection", zap.String("collection", m.name))

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.exists {
		return m.notFound("delete collection")
	}
	m.exists = false
	m.dimension = 0
	m.points = nil
	m.byID = make(map[string]int)
	m.indexes = make(map[string]struct{})

	return nil
}

func (m *MockConnector) PayloadIndexes(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.exists {
		return nil, m.notFound("get collection info")
	}

	fields := make([]string, 0, len(m.indexes))
	for f := range m.indexes {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	return fields, nil
}

func (m *MockConnector) CreatePayloadIndex(ctx context.Context, field string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.exists {
		return m.notFound("create payload index")
	}
	m.indexes[field] = struct{}{}

	return nil
}

// Dimension returns the vector size the collection was created with, 0 when absent
func (m *MockConnector) Dimension() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.dimension
}

// Len returns the number of stored points
func (m *MockConnector) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.points)
}

func (m *MockConnector) Upsert(ctx context.Context, points []entity.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.exists {
		return m.notFound("upsert points")
	}

	for _, p := range points {
		if len(p.Vector) != m.dimension {
			return fmt.Errorf("upsert points: %w: got %d, want %d", entity.ErrDimensionMismatch, len(p.Vector), m.dimension)
		}
	}

	for _, p := range points {
		if i, ok := m.byID[p.ID]; ok {
			m.points[i] = p
			continue
		}
		m.byID[p.ID] = len(m.points)
		m.points = append(m.points, p)
	}

	ctxzap.Debug(ctx, "[MOCK] points upserted", zap.Int("count", len(points)), zap.Int("total", len(m.points)))

	return nil
}

func (m *MockConnector) Query(ctx context.Context, vector []float32, topK int, filter *entity.Filter) ([]entity.ScoredPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.exists {
		return nil, m.notFound("query points")
	}
	if len(vector) != m.dimension {
		return nil, fmt.Errorf("query points: %w: got %d, want %d", entity.ErrDimensionMismatch, len(vector), m.dimension)
	}

	scored := make([]entity.ScoredPoint, 0, len(m.points))
	for _, p := range m.points {
		if !matches(p, filter) {
			continue
		}
		scored = append(scored, entity.ScoredPoint{ID: p.ID, Score: cosine(vector, p.Vector), Payload: p.Payload})
	}

	slices.SortStableFunc(scored, func(a, b entity.ScoredPoint) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if topK >= 0 && len(scored) > topK {
		scored = scored[:topK]
	}

	return scored, nil
}

func (m *MockConnector) Scroll(ctx context.Context, filter *entity.Filter, limit int) ([]entity.ScoredPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.exists {
		return nil, m.notFound("scroll points")
	}

	out := make([]entity.ScoredPoint, 0)
	for _, p := range m.points {
		if len(out) == limit {
			break
		}
		if matches(p, filter) {
			out = append(out, entity.ScoredPoint{ID: p.ID, Payload: p.Payload})
		}
	}

	return out, nil
}

func (m *MockConnector) notFound(op string) error {
	return fmt.Errorf("%s: collection %q not found", op, m.name)
}

func matches(p entity.Point, filter *entity.Filter) bool {
	return filter == nil || filter.Source == "" || p.Payload.Source == filter.Source
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}

	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
