package qdrant

import (
	"context"
	"testing"

	"github.com/futig/mini-rag/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func point(id, source string, chunk int, vec ...float32) entity.Point {
	return entity.Point{
		ID:      id,
		Vector:  vec,
		Payload: entity.Payload{Text: id, Source: source, ChunkID: chunk},
	}
}

func TestMockConnector_QueryOrdersByCosine(t *testing.T) {
	ctx := context.Background()
	m := NewMockConnector("test", zap.NewNop())
	require.NoError(t, m.CreateCollection(ctx, 2))

	require.NoError(t, m.Upsert(ctx, []entity.Point{
		point("far", "a", 0, 0, 1),
		point("near", "a", 1, 1, 0.1),
		point("mid", "b", 0, 1, 1),
	}))

	hits, err := m.Query(ctx, []float32{1, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "near", hits[0].ID)
	assert.Equal(t, "mid", hits[1].ID)
	assert.Greater(t, hits[0].Score, hits[1].Score)

	hits, err = m.Query(ctx, []float32{1, 0}, 5, entity.NewSourceFilter("a"))
	require.NoError(t, err)
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.Equal(t, "a", h.Payload.Source)
	}
}

func TestMockConnector_ScrollKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMockConnector("test", zap.NewNop())
	require.NoError(t, m.CreateCollection(ctx, 1))

	require.NoError(t, m.Upsert(ctx, []entity.Point{
		point("p1", "doc", 0, 1),
		point("x", "other", 0, 1),
		point("p2", "doc", 1, 1),
		point("p3", "doc", 2, 1),
	}))

	got, err := m.Scroll(ctx, entity.NewSourceFilter("doc"), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, "p2", got[1].ID)

	none, err := m.Scroll(ctx, entity.NewSourceFilter("missing"), 100)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMockConnector_DeleteAndRecreate(t *testing.T) {
	ctx := context.Background()
	m := NewMockConnector("test", zap.NewNop())
	require.NoError(t, m.CreateCollection(ctx, 2))
	require.NoError(t, m.CreatePayloadIndex(ctx, "source"))
	require.NoError(t, m.Upsert(ctx, []entity.Point{point("a", "s", 0, 1, 0)}))

	require.NoError(t, m.DeleteCollection(ctx))
	exists, _ := m.CollectionExists(ctx)
	assert.False(t, exists)

	_, err := m.Query(ctx, []float32{1, 0}, 5, nil)
	assert.Error(t, err)

	require.NoError(t, m.CreateCollection(ctx, 3))
	assert.Equal(t, 3, m.Dimension())
	assert.Equal(t, 0, m.Len())

	fields, err := m.PayloadIndexes(ctx)
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestMockConnector_RejectsWrongDimension(t *testing.T) {
	ctx := context.Background()
	m := NewMockConnector("test", zap.NewNop())
	require.NoError(t, m.CreateCollection(ctx, 3))

	err := m.Upsert(ctx, []entity.Point{point("a", "s", 0, 1, 0)})

	assert.ErrorIs(t, err, entity.ErrDimensionMismatch)
	assert.Equal(t, 0, m.Len())
}

func TestMockConnector_UpsertSameIDReplaces(t *testing.T) {
	ctx := context.Background()
	m := NewMockConnector("test", zap.NewNop())
	require.NoError(t, m.CreateCollection(ctx, 1))

	require.NoError(t, m.Upsert(ctx, []entity.Point{point("a", "s", 0, 1)}))
	require.NoError(t, m.Upsert(ctx, []entity.Point{point("a", "t", 0, 1)}))

	assert.Equal(t, 1, m.Len())
	got, _ := m.Scroll(ctx, nil, 10)
	assert.Equal(t, "t", got[0].Payload.Source)
}
