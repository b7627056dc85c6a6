package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"docrag/internal/domain"
)

type fakeLoader struct {
	sections map[string][]domain.DocumentSection
	fail     map[string]error
}

func (f *fakeLoader) Load(_ []byte, filename string) ([]domain.DocumentSection, error) {
	if err, ok := f.fail[filename]; ok {
		return nil, err
	}
	return f.sections[filename], nil
}

type fakeChunker struct{}

func (fakeChunker) ChunkSections(sections []domain.DocumentSection) []domain.Chunk {
	var chunks []domain.Chunk
	for _, s := range sections {
		if s.Text == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			Text:         s.Text,
			ChunkIndex:   0,
			DocumentName: s.DocumentName,
			Location:     s.Location,
		})
	}
	return chunks
}

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float64, len(texts))
	for i, t := range texts {
		vectors[i] = []float64{float64(len(t)), 1}
	}
	return vectors, nil
}

type fakeStore struct {
	upserted  []domain.VectorRecord
	upsertErr error
	searchErr error
	hits      []domain.SearchHit
	latencyMs float64
}

func (f *fakeStore) CreateIndex(context.Context, string, int, string) (bool, error) {
	return true, nil
}

func (f *fakeStore) Upsert(_ context.Context, _ string, records []domain.VectorRecord) (domain.UpsertResult, error) {
	if f.upsertErr != nil {
		return domain.UpsertResult{}, f.upsertErr
	}
	f.upserted = append(f.upserted, records...)
	return domain.UpsertResult{Count: len(records), ElapsedMs: 1.5}, nil
}

func (f *fakeStore) Search(context.Context, string, []float64, int, bool) (domain.SearchResult, error) {
	if f.searchErr != nil {
		return domain.SearchResult{}, f.searchErr
	}
	return domain.SearchResult{Hits: f.hits, RetrievalLatencyMs: f.latencyMs}, nil
}

func (f *fakeStore) DeleteIndex(context.Context, string) error { return nil }

func (f *fakeStore) IndexInfo(context.Context, string) (domain.IndexInfo, error) {
	return domain.IndexInfo{Name: "docs", Dimension: 2, Metric: "cosine", VectorCount: len(f.upserted)}, nil
}

func (f *fakeStore) Health(context.Context) bool { return true }

// forbiddenGenerator fails the test if the pipeline ever calls it.
type forbiddenGenerator struct{ t *testing.T }

func (g forbiddenGenerator) Complete(context.Context, string, string) (string, error) {
	g.t.Fatal("generator must not be invoked")
	return "", nil
}

type fakeGenerator struct {
	answer     string
	err        error
	lastSystem string
	lastUser   string
}

func (g *fakeGenerator) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	g.lastSystem = systemPrompt
	g.lastUser = userPrompt
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

var errBoom = errors.New("boom")

func sectionsFor(name string, texts ...string) []domain.DocumentSection {
	sections := make([]domain.DocumentSection, len(texts))
	for i, t := range texts {
		sections[i] = domain.DocumentSection{
			Text:         t,
			DocumentName: name,
			Location:     domain.PageLocation(i + 1),
		}
	}
	return sections
}

func hit(id string, score float64, metadata map[string]any) domain.SearchHit {
	if metadata == nil {
		metadata = map[string]any{}
	}
	if _, ok := metadata["text"]; !ok {
		metadata["text"] = fmt.Sprintf("text-%s", id)
	}
	return domain.SearchHit{ID: id, Score: score, Metadata: metadata}
}
