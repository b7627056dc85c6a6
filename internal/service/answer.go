package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"docrag/internal/domain"
	"docrag/internal/prompt"
)

// FallbackAnswer is returned when retrieval finds nothing to ground an
// answer in. The zero-retrieval case is a defined outcome, not an error.
const FallbackAnswer = "I couldn't find any relevant information to answer your question."

// AnswerPipeline retrieves context for a query and generates a cited answer.
type AnswerPipeline struct {
	retriever *Retriever
	generator domain.Generator
	log       *slog.Logger
}

func NewAnswerPipeline(retriever *Retriever, generator domain.Generator, log *slog.Logger) *AnswerPipeline {
	if log == nil {
		log = slog.Default()
	}
	return &AnswerPipeline{retriever: retriever, generator: generator, log: log}
}

// Answer runs embed -> search -> normalize -> prompt -> generate. When
// retrieval returns zero chunks the generator is never invoked: the result
// carries the fixed fallback answer, the recorded retrieval latency and a
// generation latency of zero.
func (p *AnswerPipeline) Answer(ctx context.Context, query string, topK int) (domain.AnswerResult, error) {
	start := time.Now()

	retrieval, err := p.retriever.Retrieve(ctx, query, topK)
	if err != nil {
		return domain.AnswerResult{}, err
	}

	if len(retrieval.Chunks) == 0 {
		p.log.Info("no chunks retrieved, returning fallback answer", "query", query)
		return domain.AnswerResult{
			Answer:              FallbackAnswer,
			Chunks:              []domain.RetrievedChunk{},
			RetrievalLatencyMs:  retrieval.RetrievalLatencyMs,
			GenerationLatencyMs: 0,
			TotalLatencyMs:      roundMs(time.Since(start)),
		}, nil
	}

	userPrompt := prompt.Build(query, retrieval.Chunks)

	genStart := time.Now()
	answer, err := p.generator.Complete(ctx, prompt.SystemPrompt, userPrompt)
	if err != nil {
		return domain.AnswerResult{}, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	generationMs := roundMs(time.Since(genStart))

	p.log.Info("generated answer", "chunks", len(retrieval.Chunks), "generation_latency_ms", generationMs)
	return domain.AnswerResult{
		Answer:              answer,
		Chunks:              retrieval.Chunks,
		RetrievalLatencyMs:  retrieval.RetrievalLatencyMs,
		GenerationLatencyMs: generationMs,
		TotalLatencyMs:      roundMs(time.Since(start)),
	}, nil
}
