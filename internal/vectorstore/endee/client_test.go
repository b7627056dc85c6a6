package endee

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/domain"
)

func TestCreateIndex_Created(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/indexes", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "docs", body["name"])
		assert.Equal(t, float64(1536), body["dimension"])
		assert.Equal(t, "cosine", body["metric"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"name":"docs"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	created, err := c.CreateIndex(context.Background(), "docs", 1536, "cosine")
	require.NoError(t, err)
	assert.True(t, created)
}

func TestCreateIndex_AlreadyExistsIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	created, err := c.CreateIndex(context.Background(), "docs", 1536, "cosine")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestCreateIndex_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.CreateIndex(context.Background(), "docs", 1536, "cosine")
	require.Error(t, err)
}

func TestUpsert_ReturnsCountAndElapsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/indexes/docs/vectors", r.URL.Path)

		var body struct {
			Vectors []domain.VectorRecord `json:"vectors"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Vectors, 2)
		assert.Equal(t, "a.pdf_0", body.Vectors[0].ID)

		_ = json.NewEncoder(w).Encode(map[string]any{"count": 2})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	records := []domain.VectorRecord{
		{ID: "a.pdf_0", Vector: []float64{0.1, 0.2}, Metadata: domain.RecordMetadata{DocumentName: "a.pdf", Text: "x"}},
		{ID: "a.pdf_1", Vector: []float64{0.3, 0.4}, Metadata: domain.RecordMetadata{DocumentName: "a.pdf", Text: "y"}},
	}
	res, err := c.Upsert(context.Background(), "docs", records)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.GreaterOrEqual(t, res.ElapsedMs, 0.0)
}

func TestSearch_PreservesResultOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/indexes/docs/search", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(3), body["top_k"])
		assert.Equal(t, true, body["include_metadata"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"id": "c", "score": 0.2, "metadata": map[string]any{"text": "third"}},
				{"id": "a", "score": 0.9, "metadata": map[string]any{"text": "first"}},
				{"id": "b", "score": 0.5, "metadata": map[string]any{"text": "second"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	res, err := c.Search(context.Background(), "docs", []float64{0.1}, 3, true)
	require.NoError(t, err)
	require.Len(t, res.Hits, 3)
	// Order exactly as the service returned it, no re-sorting.
	assert.Equal(t, "c", res.Hits[0].ID)
	assert.Equal(t, "a", res.Hits[1].ID)
	assert.Equal(t, "b", res.Hits[2].ID)
	assert.GreaterOrEqual(t, res.RetrievalLatencyMs, 0.0)
}

func TestDeleteIndexAndInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			assert.Equal(t, "/indexes/docs", r.URL.Path)
			_, _ = w.Write([]byte(`{}`))
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(domain.IndexInfo{Name: "docs", Dimension: 8, Metric: "dot", VectorCount: 42})
		}
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, c.DeleteIndex(context.Background(), "docs"))

	info, err := c.IndexInfo(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, 42, info.VectorCount)
	assert.Equal(t, "dot", info.Metric)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	c := NewClient(Config{BaseURL: srv.URL})
	assert.True(t, c.Health(context.Background()))

	srv.Close()
	assert.False(t, c.Health(context.Background()))
}
