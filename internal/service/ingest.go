package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"docrag/internal/domain"
)

// FileUpload is one file handed to the ingestion pipeline.
type FileUpload struct {
	Content  []byte
	Filename string
}

// IngestionPipeline runs load -> chunk -> embed -> store. It holds no
// mutable state; each Ingest call is independent.
type IngestionPipeline struct {
	loader    domain.DocumentLoader
	chunker   domain.Chunker
	embedder  domain.Embedder
	store     domain.VectorStore
	indexName string
	log       *slog.Logger
}

func NewIngestionPipeline(loader domain.DocumentLoader, chunker domain.Chunker, embedder domain.Embedder, store domain.VectorStore, indexName string, log *slog.Logger) *IngestionPipeline {
	if log == nil {
		log = slog.Default()
	}
	return &IngestionPipeline{
		loader:    loader,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		indexName: indexName,
		log:       log,
	}
}

// Ingest loads every file, chunks the extracted sections, embeds all chunk
// texts in one batched call and upserts the resulting records. A file that
// fails to load is logged and skipped; the run fails only when no file
// yielded sections, when chunking produced nothing, or when an external call
// failed.
func (p *IngestionPipeline) Ingest(ctx context.Context, files []FileUpload) (domain.IngestStats, error) {
	start := time.Now()

	var sections []domain.DocumentSection
	loaded := 0
	for _, f := range files {
		docSections, err := p.loader.Load(f.Content, f.Filename)
		if err != nil {
			p.log.Warn("skipping file", "filename", f.Filename, "error", err)
			continue
		}
		sections = append(sections, docSections...)
		loaded++
	}
	if len(sections) == 0 {
		return domain.IngestStats{}, domain.ErrNoDocuments
	}
	p.log.Info("loaded document sections", "files", loaded, "sections", len(sections))

	chunks := p.chunker.ChunkSections(sections)
	if len(chunks) == 0 {
		return domain.IngestStats{}, domain.ErrNoChunks
	}
	p.log.Info("chunked documents", "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	embedStart := time.Now()
	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return domain.IngestStats{}, fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
	}
	if len(vectors) != len(chunks) {
		return domain.IngestStats{}, fmt.Errorf("%w: expected %d vectors, got %d", domain.ErrEmbedding, len(chunks), len(vectors))
	}
	embedMs := roundMs(time.Since(embedStart))

	records := buildRecords(chunks, vectors)

	upsert, err := p.store.Upsert(ctx, p.indexName, records)
	if err != nil {
		return domain.IngestStats{}, fmt.Errorf("%w: upsert: %v", domain.ErrStore, err)
	}
	p.log.Info("stored vectors", "count", upsert.Count, "elapsed_ms", upsert.ElapsedMs)

	return domain.IngestStats{
		FilesProcessed: loaded,
		SectionsLoaded: len(sections),
		ChunksCreated:  len(chunks),
		VectorsStored:  upsert.Count,
		EmbedTimeMs:    embedMs,
		UpsertTimeMs:   upsert.ElapsedMs,
		TotalTimeMs:    roundMs(time.Since(start)),
	}, nil
}

// buildRecords pairs chunks with their vectors. Record ids combine the
// document name with a per-document emission counter, so re-ingesting the
// same files in the same order overwrites rather than duplicates.
func buildRecords(chunks []domain.Chunk, vectors [][]float64) []domain.VectorRecord {
	perDocument := make(map[string]int)
	records := make([]domain.VectorRecord, len(chunks))
	for i, ch := range chunks {
		emission := perDocument[ch.DocumentName]
		perDocument[ch.DocumentName] = emission + 1

		meta := domain.RecordMetadata{
			DocumentName: ch.DocumentName,
			Text:         ch.Text,
			ChunkIndex:   ch.ChunkIndex,
		}
		switch ch.Location.Kind {
		case domain.LocationPage:
			n := ch.Location.Number
			meta.PageNumber = &n
		case domain.LocationParagraph:
			n := ch.Location.Number
			meta.ParagraphIndex = &n
		}
		records[i] = domain.VectorRecord{
			ID:       fmt.Sprintf("%s_%d", ch.DocumentName, emission),
			Vector:   vectors[i],
			Metadata: meta,
		}
	}
	return records
}
