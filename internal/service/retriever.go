package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"docrag/internal/domain"
)

// Retriever embeds a query and runs the similarity search, returning
// normalized chunks.
type Retriever struct {
	embedder  domain.Embedder
	store     domain.VectorStore
	indexName string
	log       *slog.Logger
}

func NewRetriever(embedder domain.Embedder, store domain.VectorStore, indexName string, log *slog.Logger) *Retriever {
	if log == nil {
		log = slog.Default()
	}
	return &Retriever{embedder: embedder, store: store, indexName: indexName, log: log}
}

// RetrievalResult carries the normalized chunks and the retrieval latency,
// which covers the query embedding plus the search call.
type RetrievalResult struct {
	Chunks             []domain.RetrievedChunk
	RetrievalLatencyMs float64
}

// Retrieve returns the topK most similar chunks for the query, in the order
// the store ranked them.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) (RetrievalResult, error) {
	if topK <= 0 {
		topK = 5
	}
	start := time.Now()

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return RetrievalResult{}, fmt.Errorf("%w: query embedding: %v", domain.ErrEmbedding, err)
	}
	if len(vectors) == 0 {
		return RetrievalResult{}, fmt.Errorf("%w: query embedding: empty response", domain.ErrEmbedding)
	}

	result, err := r.store.Search(ctx, r.indexName, vectors[0], topK, true)
	if err != nil {
		return RetrievalResult{}, fmt.Errorf("%w: search: %v", domain.ErrStore, err)
	}

	latency := roundMs(time.Since(start))
	r.log.Debug("retrieved chunks", "count", len(result.Hits), "top_k", topK, "latency_ms", latency)
	return RetrievalResult{
		Chunks:             normalizeHits(result.Hits),
		RetrievalLatencyMs: latency,
	}, nil
}

// normalizeHits projects raw store hits into RetrievedChunks. Order is kept
// exactly as returned; missing or malformed metadata fields default rather
// than failing the batch.
func normalizeHits(hits []domain.SearchHit) []domain.RetrievedChunk {
	chunks := make([]domain.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		chunks = append(chunks, domain.RetrievedChunk{
			ID:           hit.ID,
			Similarity:   hit.Score,
			Text:         metaString(hit.Metadata, "text"),
			DocumentName: metaString(hit.Metadata, "document_name"),
			Location:     resolveLocation(hit.Metadata),
			ChunkIndex:   metaInt(hit.Metadata, "chunk_index"),
		})
	}
	return chunks
}

// resolveLocation applies the citation precedence to raw metadata: a non-zero
// page number wins over a non-zero paragraph index; anything else is no
// location.
func resolveLocation(metadata map[string]any) domain.LocationRef {
	if page := metaInt(metadata, "page_number"); page != 0 {
		return domain.PageLocation(page)
	}
	if para := metaInt(metadata, "paragraph_index"); para != 0 {
		return domain.ParagraphLocation(para)
	}
	return domain.LocationRef{}
}

func metaString(metadata map[string]any, key string) string {
	if v, ok := metadata[key].(string); ok {
		return v
	}
	return ""
}

func metaInt(metadata map[string]any, key string) int {
	switch v := metadata[key].(type) {
	case float64: // JSON numbers decode as float64
		return int(v)
	case int:
		return v
	}
	return 0
}

func roundMs(d time.Duration) float64 {
	ms := float64(d.Microseconds()) / 1000.0
	return float64(int64(ms*100+0.5)) / 100
}
