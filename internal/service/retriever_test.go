package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/domain"
)

func TestRetrieve_NormalizesAndPreservesOrder(t *testing.T) {
	// Five hits deliberately out of rank order: descending ids with
	// non-monotonic scores. The normalizer must not re-sort.
	store := &fakeStore{
		hits: []domain.SearchHit{
			hit("e", 0.41, map[string]any{"document_name": "e.pdf", "page_number": float64(5)}),
			hit("d", 0.93, map[string]any{"document_name": "d.pdf", "page_number": float64(4)}),
			hit("c", 0.12, map[string]any{"document_name": "c.docx", "paragraph_index": float64(3)}),
			hit("b", 0.87, map[string]any{"document_name": "b.pdf", "page_number": float64(2)}),
			hit("a", 0.55, map[string]any{"document_name": "a.pdf", "page_number": float64(1)}),
		},
		latencyMs: 3.2,
	}
	r := NewRetriever(&fakeEmbedder{}, store, "docs", nil)

	res, err := r.Retrieve(context.Background(), "question", 5)
	require.NoError(t, err)
	require.Len(t, res.Chunks, 5)

	ids := make([]string, len(res.Chunks))
	scores := make([]float64, len(res.Chunks))
	for i, c := range res.Chunks {
		ids[i] = c.ID
		scores[i] = c.Similarity
	}
	assert.Equal(t, []string{"e", "d", "c", "b", "a"}, ids)
	assert.Equal(t, []float64{0.41, 0.93, 0.12, 0.87, 0.55}, scores)
}

func TestNormalizeHits_MalformedHitDegradesGracefully(t *testing.T) {
	hits := []domain.SearchHit{
		{ID: "good", Score: 0.8, Metadata: map[string]any{
			"text":          "fine",
			"document_name": "a.pdf",
			"chunk_index":   float64(2),
			"page_number":   float64(7),
		}},
		{ID: "bad", Score: 0.5, Metadata: nil},
		{ID: "wrong-types", Score: 0.3, Metadata: map[string]any{
			"text":          42,
			"document_name": true,
			"chunk_index":   "three",
		}},
	}
	chunks := normalizeHits(hits)
	require.Len(t, chunks, 3)

	assert.Equal(t, "fine", chunks[0].Text)
	assert.Equal(t, domain.PageLocation(7), chunks[0].Location)
	assert.Equal(t, 2, chunks[0].ChunkIndex)

	assert.Equal(t, "", chunks[1].Text)
	assert.Equal(t, "", chunks[1].DocumentName)
	assert.Equal(t, domain.LocationRef{}, chunks[1].Location)
	assert.Equal(t, 0, chunks[1].ChunkIndex)

	assert.Equal(t, "", chunks[2].Text)
	assert.Equal(t, 0, chunks[2].ChunkIndex)
}

func TestNormalizeHits_ScorePassesThroughUnclamped(t *testing.T) {
	hits := []domain.SearchHit{
		{ID: "a", Score: -17.4, Metadata: map[string]any{}},
		{ID: "b", Score: 3.9, Metadata: map[string]any{}},
	}
	chunks := normalizeHits(hits)
	assert.Equal(t, -17.4, chunks[0].Similarity)
	assert.Equal(t, 3.9, chunks[1].Similarity)
}

func TestResolveLocation_PageWinsOverParagraph(t *testing.T) {
	metadata := map[string]any{
		"page_number":     float64(3),
		"paragraph_index": float64(7),
	}
	assert.Equal(t, domain.PageLocation(3), resolveLocation(metadata))
}

func TestResolveLocation_ZeroPageFallsThrough(t *testing.T) {
	metadata := map[string]any{
		"page_number":     float64(0),
		"paragraph_index": float64(7),
	}
	assert.Equal(t, domain.ParagraphLocation(7), resolveLocation(metadata))

	assert.Equal(t, domain.LocationRef{}, resolveLocation(map[string]any{}))
}

func TestRetrieve_EmbeddingFailure(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{err: errBoom}, &fakeStore{}, "docs", nil)
	_, err := r.Retrieve(context.Background(), "q", 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmbedding))
}

func TestRetrieve_StoreFailure(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{}, &fakeStore{searchErr: errBoom}, "docs", nil)
	_, err := r.Retrieve(context.Background(), "q", 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStore))
}
