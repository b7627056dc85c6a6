package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/domain"
)

func record(id string, vector []float64) domain.VectorRecord {
	return domain.VectorRecord{
		ID:     id,
		Vector: vector,
		Metadata: domain.RecordMetadata{
			DocumentName: "doc.pdf",
			Text:         "text for " + id,
		},
	}
}

func TestCreateIndex_SecondCallReportsExists(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	created, err := s.CreateIndex(ctx, "docs", 2, "cosine")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.CreateIndex(ctx, "docs", 2, "cosine")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestCreateIndex_RejectsUnknownMetric(t *testing.T) {
	s := NewStore()
	_, err := s.CreateIndex(context.Background(), "docs", 2, "manhattan")
	require.Error(t, err)
}

func TestUpsert_OverwritesByID(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, err := s.CreateIndex(ctx, "docs", 2, "cosine")
	require.NoError(t, err)

	_, err = s.Upsert(ctx, "docs", []domain.VectorRecord{record("a_0", []float64{1, 0})})
	require.NoError(t, err)
	res, err := s.Upsert(ctx, "docs", []domain.VectorRecord{record("a_0", []float64{0, 1})})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)

	info, err := s.IndexInfo(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, 1, info.VectorCount)

	// The overwritten vector now matches the new direction.
	sr, err := s.Search(ctx, "docs", []float64{0, 1}, 1, true)
	require.NoError(t, err)
	require.Len(t, sr.Hits, 1)
	assert.InDelta(t, 1.0, sr.Hits[0].Score, 1e-9)
}

func TestSearch_RanksByMetric(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, err := s.CreateIndex(ctx, "docs", 2, "cosine")
	require.NoError(t, err)

	_, err = s.Upsert(ctx, "docs", []domain.VectorRecord{
		record("x", []float64{1, 0}),
		record("y", []float64{0, 1}),
		record("z", []float64{0.7, 0.7}),
	})
	require.NoError(t, err)

	sr, err := s.Search(ctx, "docs", []float64{1, 0}, 2, true)
	require.NoError(t, err)
	require.Len(t, sr.Hits, 2)
	assert.Equal(t, "x", sr.Hits[0].ID)
	assert.Equal(t, "z", sr.Hits[1].ID)
	assert.Equal(t, "text for x", sr.Hits[0].Metadata["text"])
}

func TestSearch_WithoutMetadata(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, err := s.CreateIndex(ctx, "docs", 2, "dot")
	require.NoError(t, err)
	_, err = s.Upsert(ctx, "docs", []domain.VectorRecord{record("x", []float64{1, 2})})
	require.NoError(t, err)

	sr, err := s.Search(ctx, "docs", []float64{1, 1}, 5, false)
	require.NoError(t, err)
	require.Len(t, sr.Hits, 1)
	assert.Nil(t, sr.Hits[0].Metadata)
	assert.InDelta(t, 3.0, sr.Hits[0].Score, 1e-9)
}

func TestUpsert_DimensionMismatch(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, err := s.CreateIndex(ctx, "docs", 3, "cosine")
	require.NoError(t, err)

	_, err = s.Upsert(ctx, "docs", []domain.VectorRecord{record("a", []float64{1, 0})})
	require.Error(t, err)
}

func TestDeleteIndex(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, err := s.CreateIndex(ctx, "docs", 2, "cosine")
	require.NoError(t, err)
	require.NoError(t, s.DeleteIndex(ctx, "docs"))
	assert.Error(t, s.DeleteIndex(ctx, "docs"))
}
