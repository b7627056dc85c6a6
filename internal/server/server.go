// Package server exposes the ingestion and query pipelines over HTTP.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"docrag/internal/config"
	"docrag/internal/domain"
	"docrag/internal/loader"
	"docrag/internal/service"
)

const maxUploadBytes = 50 << 20

// Server wires the HTTP surface to the pipelines. It holds immutable
// references injected at construction.
type Server struct {
	ingestion *service.IngestionPipeline
	answers   *service.AnswerPipeline
	store     domain.VectorStore
	cfg       *config.AppConfig
	log       *slog.Logger
}

func New(ingestion *service.IngestionPipeline, answers *service.AnswerPipeline, store domain.VectorStore, cfg *config.AppConfig, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{ingestion: ingestion, answers: answers, store: store, cfg: cfg, log: log}
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.rootHandler)
	mux.HandleFunc("/ingest", s.ingestHandler)
	mux.HandleFunc("/query", s.queryHandler)
	mux.HandleFunc("/stats", s.statsHandler)
	return s.logRequests(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"id", uuid.NewString(),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
		)
	})
}

// rootHandler is the health check.
func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "healthy",
		"service":       "docrag",
		"store_healthy": s.store.Health(r.Context()),
		"endee_url":     s.cfg.Endee.BaseURL,
		"index_name":    s.cfg.Endee.IndexName,
	})
}

type ingestResponse struct {
	Success        bool    `json:"success"`
	Message        string  `json:"message"`
	FilesProcessed int     `json:"files_processed"`
	ChunksCreated  int     `json:"chunks_created"`
	VectorsStored  int     `json:"vectors_stored"`
	UpsertTimeMs   float64 `json:"upsert_time_ms"`
}

// ingestHandler accepts multiple uploaded files and runs the ingestion
// pipeline. Only PDF and DOCX files are permitted.
func (s *Server) ingestHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "No valid files provided")
		return
	}

	var uploads []service.FileUpload
	for _, h := range headers {
		if !loader.SupportedExtension(h.Filename) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("File type not supported: %s. Only PDF and DOCX files are allowed.", h.Filename))
			return
		}
		f, err := h.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read %s", h.Filename))
			return
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read %s", h.Filename))
			return
		}
		uploads = append(uploads, service.FileUpload{Content: content, Filename: h.Filename})
	}

	stats, err := s.ingestion.Ingest(r.Context(), uploads)
	if err != nil {
		s.log.Error("ingestion failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ingestResponse{
			Success: false,
			Message: fmt.Sprintf("Ingestion failed: %v", err),
		})
		return
	}
	writeJSON(w, http.StatusOK, ingestResponse{
		Success:        true,
		Message:        fmt.Sprintf("Successfully ingested %d files", stats.FilesProcessed),
		FilesProcessed: stats.FilesProcessed,
		ChunksCreated:  stats.ChunksCreated,
		VectorsStored:  stats.VectorsStored,
		UpsertTimeMs:   stats.UpsertTimeMs,
	})
}

type queryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type chunkPayload struct {
	ID             string  `json:"id"`
	Similarity     float64 `json:"similarity"`
	Text           string  `json:"text"`
	DocumentName   string  `json:"document_name"`
	PageNumber     *int    `json:"page_number"`
	ParagraphIndex *int    `json:"paragraph_index"`
	ChunkIndex     int     `json:"chunk_index"`
}

type queryResponse struct {
	Answer              string         `json:"answer"`
	Chunks              []chunkPayload `json:"chunks"`
	RetrievalLatencyMs  float64        `json:"retrieval_latency_ms"`
	GenerationLatencyMs float64        `json:"generation_latency_ms"`
	TotalLatencyMs      float64        `json:"total_latency_ms"`
}

// queryHandler answers a natural-language question against the index.
func (s *Server) queryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "Query cannot be empty")
		return
	}
	topK := req.TopK
	if topK <= 0 {
		topK = 5
	}

	result, err := s.answers.Answer(r.Context(), req.Query, topK)
	if err != nil {
		s.log.Error("query failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Query failed: %v", err))
		return
	}

	chunks := make([]chunkPayload, 0, len(result.Chunks))
	for _, c := range result.Chunks {
		chunks = append(chunks, toChunkPayload(c))
	}
	writeJSON(w, http.StatusOK, queryResponse{
		Answer:              result.Answer,
		Chunks:              chunks,
		RetrievalLatencyMs:  result.RetrievalLatencyMs,
		GenerationLatencyMs: result.GenerationLatencyMs,
		TotalLatencyMs:      result.TotalLatencyMs,
	})
}

// statsHandler is a thin pass-through over the store's index info plus the
// effective configuration.
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	stats := map[string]any{
		"config": map[string]any{
			"embedding_model": s.cfg.Embedding.Model,
			"llm_model":       s.cfg.LLM.Model,
			"chunk_size":      s.cfg.Chunking.Size,
			"chunk_overlap":   s.cfg.Chunking.Overlap,
		},
	}
	info, err := s.store.IndexInfo(r.Context(), s.cfg.Endee.IndexName)
	if err != nil {
		stats["endee"] = map[string]any{"error": err.Error()}
	} else {
		stats["endee"] = info
	}
	writeJSON(w, http.StatusOK, stats)
}

func toChunkPayload(c domain.RetrievedChunk) chunkPayload {
	p := chunkPayload{
		ID:           c.ID,
		Similarity:   c.Similarity,
		Text:         c.Text,
		DocumentName: c.DocumentName,
		ChunkIndex:   c.ChunkIndex,
	}
	switch c.Location.Kind {
	case domain.LocationPage:
		n := c.Location.Number
		p.PageNumber = &n
	case domain.LocationParagraph:
		n := c.Location.Number
		p.ParagraphIndex = &n
	}
	return p
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
