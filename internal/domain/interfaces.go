package domain

import "context"

// DocumentLoader extracts sections from an uploaded file. Implementations
// route on the filename extension.
type DocumentLoader interface {
	Load(content []byte, filename string) ([]DocumentSection, error)
}

// Chunker splits sections into retrievable windows.
type Chunker interface {
	ChunkSections(sections []DocumentSection) []Chunk
}

// Embedder converts text into numeric vectors, one per input, order
// preserving, with fixed dimensionality per configured model.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// UpsertResult reports a completed vector write.
type UpsertResult struct {
	Count     int     `json:"count"`
	ElapsedMs float64 `json:"elapsed_ms"`
}

// SearchHit is one raw similarity-search result before normalization.
// Metadata is the store's open mapping; normalization projects it into a
// RetrievedChunk.
type SearchHit struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

// SearchResult is the raw outcome of one similarity search.
type SearchResult struct {
	Hits               []SearchHit
	RetrievalLatencyMs float64
}

// IndexInfo describes an index as reported by the store.
type IndexInfo struct {
	Name        string `json:"name"`
	Dimension   int    `json:"dimension"`
	Metric      string `json:"metric"`
	VectorCount int    `json:"vector_count"`
}

// VectorStore is the client capability for the external vector database.
// CreateIndex reports created=false when the index already exists; that is
// not an error.
type VectorStore interface {
	CreateIndex(ctx context.Context, name string, dimension int, metric string) (created bool, err error)
	Upsert(ctx context.Context, index string, records []VectorRecord) (UpsertResult, error)
	Search(ctx context.Context, index string, vector []float64, topK int, includeMetadata bool) (SearchResult, error)
	DeleteIndex(ctx context.Context, name string) error
	IndexInfo(ctx context.Context, name string) (IndexInfo, error)
	Health(ctx context.Context) bool
}

// Generator produces a single-shot completion from a system and user prompt.
type Generator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
