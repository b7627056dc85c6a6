// Package app assembles the pipeline components from configuration. All
// three binaries share this wiring.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"docrag/internal/chunker"
	"docrag/internal/config"
	"docrag/internal/domain"
	embopenai "docrag/internal/embedding/openai"
	genopenai "docrag/internal/generation/openai"
	"docrag/internal/loader"
	"docrag/internal/service"
	"docrag/internal/vectorstore/endee"
	"docrag/internal/vectorstore/memory"
)

// Components holds the assembled collaborators and pipelines.
type Components struct {
	Store     domain.VectorStore
	Ingestion *service.IngestionPipeline
	Answers   *service.AnswerPipeline
}

// Build wires loader, chunker, embedder, store and generator per the config
// and constructs both pipelines.
func Build(cfg *config.AppConfig, log *slog.Logger) (*Components, error) {
	if log == nil {
		log = slog.Default()
	}

	ch, err := chunker.NewWindowChunker(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		return nil, err
	}

	embedder, err := embopenai.NewClient(embopenai.Config{
		BaseURL:   cfg.Embedding.BaseURL,
		APIKeyEnv: cfg.Embedding.APIKeyEnv,
		Model:     cfg.Embedding.Model,
		Timeout:   time.Duration(cfg.Embedding.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding client: %w", err)
	}

	generator, err := genopenai.NewClient(genopenai.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKeyEnv:   cfg.LLM.APIKeyEnv,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("generation client: %w", err)
	}

	var store domain.VectorStore
	switch cfg.Store {
	case "memory":
		store = memory.NewStore()
	default:
		store = endee.NewClient(endee.Config{
			BaseURL: cfg.Endee.BaseURL,
			Timeout: time.Duration(cfg.Endee.TimeoutSecs) * time.Second,
		})
	}

	ingestion := service.NewIngestionPipeline(loader.New(), ch, embedder, store, cfg.Endee.IndexName, log)
	retriever := service.NewRetriever(embedder, store, cfg.Endee.IndexName, log)
	answers := service.NewAnswerPipeline(retriever, generator, log)

	return &Components{Store: store, Ingestion: ingestion, Answers: answers}, nil
}

// EnsureIndex checks store health and creates the index if it does not
// exist. An existing index is reported, not treated as an error.
func (c *Components) EnsureIndex(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	if !c.Store.Health(ctx) {
		log.Warn("vector store is not responding", "url", cfg.Endee.BaseURL)
	}
	created, err := c.Store.CreateIndex(ctx, cfg.Endee.IndexName, cfg.Embedding.Dimension, cfg.Endee.Metric)
	if err != nil {
		return fmt.Errorf("creating index %q: %w", cfg.Endee.IndexName, err)
	}
	if created {
		log.Info("created index", "name", cfg.Endee.IndexName, "dimension", cfg.Embedding.Dimension, "metric", cfg.Endee.Metric)
	} else {
		log.Info("index already exists", "name", cfg.Endee.IndexName)
	}
	return nil
}
