// Package memory is a brute-force in-process vector store used for
// development and tests. It implements the same client capability as the
// Endee REST client.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"docrag/internal/domain"
)

type index struct {
	dimension int
	metric    string
	records   []domain.VectorRecord
	byID      map[string]int
}

// Store keeps named indexes in memory with insert-or-overwrite semantics.
type Store struct {
	mu      sync.RWMutex
	indexes map[string]*index
}

func NewStore() *Store {
	return &Store{indexes: make(map[string]*index)}
}

func (s *Store) CreateIndex(_ context.Context, name string, dimension int, metric string) (bool, error) {
	if dimension <= 0 {
		return false, fmt.Errorf("memory: invalid dimension %d", dimension)
	}
	switch metric {
	case "cosine", "euclidean", "dot":
	default:
		return false, fmt.Errorf("memory: unknown metric %q", metric)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indexes[name]; ok {
		return false, nil
	}
	s.indexes[name] = &index{dimension: dimension, metric: metric, byID: make(map[string]int)}
	return true, nil
}

func (s *Store) Upsert(_ context.Context, name string, records []domain.VectorRecord) (domain.UpsertResult, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.indexes[name]
	if !ok {
		return domain.UpsertResult{}, fmt.Errorf("memory: index %q not found", name)
	}
	for _, rec := range records {
		if len(rec.Vector) != idx.dimension {
			return domain.UpsertResult{}, fmt.Errorf("memory: vector dimension %d does not match index dimension %d", len(rec.Vector), idx.dimension)
		}
		if pos, exists := idx.byID[rec.ID]; exists {
			idx.records[pos] = rec
		} else {
			idx.byID[rec.ID] = len(idx.records)
			idx.records = append(idx.records, rec)
		}
	}
	return domain.UpsertResult{
		Count:     len(records),
		ElapsedMs: float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}

func (s *Store) Search(_ context.Context, name string, vector []float64, topK int, includeMetadata bool) (domain.SearchResult, error) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[name]
	if !ok {
		return domain.SearchResult{}, fmt.Errorf("memory: index %q not found", name)
	}
	if topK <= 0 {
		topK = 5
	}

	type scored struct {
		pos   int
		score float64
	}
	scores := make([]scored, len(idx.records))
	for i, rec := range idx.records {
		scores[i] = scored{pos: i, score: similarity(idx.metric, rec.Vector, vector)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if topK > len(scores) {
		topK = len(scores)
	}

	hits := make([]domain.SearchHit, 0, topK)
	for _, sc := range scores[:topK] {
		rec := idx.records[sc.pos]
		hit := domain.SearchHit{ID: rec.ID, Score: sc.score}
		if includeMetadata {
			hit.Metadata = metadataMap(rec.Metadata)
		}
		hits = append(hits, hit)
	}
	return domain.SearchResult{
		Hits:               hits,
		RetrievalLatencyMs: float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}

func (s *Store) DeleteIndex(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indexes[name]; !ok {
		return fmt.Errorf("memory: index %q not found", name)
	}
	delete(s.indexes, name)
	return nil
}

func (s *Store) IndexInfo(_ context.Context, name string) (domain.IndexInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[name]
	if !ok {
		return domain.IndexInfo{}, fmt.Errorf("memory: index %q not found", name)
	}
	return domain.IndexInfo{
		Name:        name,
		Dimension:   idx.dimension,
		Metric:      idx.metric,
		VectorCount: len(idx.records),
	}, nil
}

func (s *Store) Health(context.Context) bool { return true }

// similarity computes the metric's native score. Euclidean is negated so
// that higher always ranks closer.
func similarity(metric string, a, b []float64) float64 {
	switch metric {
	case "dot":
		return dot(a, b)
	case "euclidean":
		sum := 0.0
		n := min(len(a), len(b))
		for i := 0; i < n; i++ {
			d := a[i] - b[i]
			sum += d * d
		}
		return -math.Sqrt(sum)
	default: // cosine
		na, nb := math.Sqrt(dot(a, a)), math.Sqrt(dot(b, b))
		if na == 0 || nb == 0 {
			return 0
		}
		return dot(a, b) / (na * nb)
	}
}

func dot(a, b []float64) float64 {
	n := min(len(a), len(b))
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func metadataMap(m domain.RecordMetadata) map[string]any {
	out := map[string]any{
		"document_name": m.DocumentName,
		"text":          m.Text,
		"chunk_index":   float64(m.ChunkIndex),
	}
	if m.PageNumber != nil {
		out["page_number"] = float64(*m.PageNumber)
	}
	if m.ParagraphIndex != nil {
		out["paragraph_index"] = float64(*m.ParagraphIndex)
	}
	return out
}
