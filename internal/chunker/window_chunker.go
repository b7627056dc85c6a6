package chunker

import (
	"fmt"
	"strings"

	"docrag/internal/domain"
)

// WindowChunker splits text into fixed-size overlapping windows, carrying the
// source section's metadata onto every emitted chunk. Windows are measured in
// runes so multi-byte text never gets split mid-character.
type WindowChunker struct {
	windowSize int
	overlap    int
}

// NewWindowChunker validates the window geometry up front. An overlap equal
// to or larger than the window would stall the cursor, so it is rejected here
// instead of looping forever later.
func NewWindowChunker(windowSize, overlap int) (*WindowChunker, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("chunker: window size must be positive, got %d", windowSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunker: overlap must be non-negative, got %d", overlap)
	}
	if overlap >= windowSize {
		return nil, fmt.Errorf("chunker: overlap %d must be smaller than window size %d", overlap, windowSize)
	}
	return &WindowChunker{windowSize: windowSize, overlap: overlap}, nil
}

// Chunk splits text into overlapping windows. Each window is trimmed; empty
// windows are skipped without consuming a chunk index, so indexes stay
// contiguous from 0. The window that reaches the end of the text is the last
// one. Empty or whitespace-only input yields no chunks.
func (c *WindowChunker) Chunk(text, documentName string, location domain.LocationRef) []domain.Chunk {
	runes := []rune(text)
	if len(runes) == 0 || strings.TrimSpace(text) == "" {
		return nil
	}
	step := c.windowSize - c.overlap
	var chunks []domain.Chunk
	index := 0
	for start := 0; start < len(runes); start += step {
		end := start + c.windowSize
		last := false
		if end >= len(runes) {
			end = len(runes)
			last = true
		}
		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			chunks = append(chunks, domain.Chunk{
				Text:         piece,
				ChunkIndex:   index,
				DocumentName: documentName,
				Location:     location,
			})
			index++
		}
		if last {
			break
		}
	}
	return chunks
}

// ChunkSections chunks every section in order, concatenating the results.
// Chunk indexes restart per section; documents are never interleaved.
func (c *WindowChunker) ChunkSections(sections []domain.DocumentSection) []domain.Chunk {
	var all []domain.Chunk
	for _, s := range sections {
		all = append(all, c.Chunk(s.Text, s.DocumentName, s.Location)...)
	}
	return all
}
