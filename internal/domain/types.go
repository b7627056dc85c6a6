package domain

// LocationKind discriminates the mutually exclusive location variants a
// document section can carry.
type LocationKind int

const (
	LocationNone LocationKind = iota
	LocationPage
	LocationParagraph
)

// LocationRef points at where a piece of text came from inside its source
// document. Exactly one variant is active; the zero value means no location.
type LocationRef struct {
	Kind   LocationKind
	Number int
}

// PageLocation returns a page-based location (PDF sources, 1-based).
func PageLocation(n int) LocationRef {
	return LocationRef{Kind: LocationPage, Number: n}
}

// ParagraphLocation returns a paragraph-based location (DOCX sources, 1-based).
func ParagraphLocation(n int) LocationRef {
	return LocationRef{Kind: LocationParagraph, Number: n}
}

// DocumentSection is one unit of extracted source text (a page or a
// paragraph) before chunking.
type DocumentSection struct {
	Text         string
	DocumentName string
	Location     LocationRef
}

// Chunk is a bounded text window produced by the chunker. ChunkIndex is the
// 0-based emission order within its source section.
type Chunk struct {
	Text         string
	ChunkIndex   int
	DocumentName string
	Location     LocationRef
}

// RecordMetadata is the fixed metadata mapping persisted alongside a vector.
// Page and paragraph are pointers so that absent stays distinct from zero on
// the wire.
type RecordMetadata struct {
	DocumentName   string `json:"document_name"`
	Text           string `json:"text"`
	ChunkIndex     int    `json:"chunk_index"`
	PageNumber     *int   `json:"page_number,omitempty"`
	ParagraphIndex *int   `json:"paragraph_index,omitempty"`
}

// VectorRecord is the persisted unit in the vector store.
type VectorRecord struct {
	ID       string         `json:"id"`
	Vector   []float64      `json:"vector"`
	Metadata RecordMetadata `json:"metadata"`
}

// RetrievedChunk is the normalized view of a single vector-store hit.
// Similarity is the store's native score; its semantics depend on the
// configured metric.
type RetrievedChunk struct {
	ID           string      `json:"id"`
	Similarity   float64     `json:"similarity"`
	Text         string      `json:"text"`
	DocumentName string      `json:"document_name"`
	Location     LocationRef `json:"-"`
	ChunkIndex   int         `json:"chunk_index"`
}

// AnswerResult is the outcome of one answered query. Never persisted.
type AnswerResult struct {
	Answer              string           `json:"answer"`
	Chunks              []RetrievedChunk `json:"chunks"`
	RetrievalLatencyMs  float64          `json:"retrieval_latency_ms"`
	GenerationLatencyMs float64          `json:"generation_latency_ms"`
	TotalLatencyMs      float64          `json:"total_latency_ms"`
}

// IngestStats summarizes one ingestion run.
type IngestStats struct {
	FilesProcessed int     `json:"files_processed"`
	SectionsLoaded int     `json:"sections_loaded"`
	ChunksCreated  int     `json:"chunks_created"`
	VectorsStored  int     `json:"vectors_stored"`
	EmbedTimeMs    float64 `json:"embed_time_ms"`
	UpsertTimeMs   float64 `json:"upsert_time_ms"`
	TotalTimeMs    float64 `json:"total_time_ms"`
}
