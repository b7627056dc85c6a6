// Package prompt builds the citation-aware generation prompt from retrieved
// chunks. Everything here is a pure string transformation.
package prompt

import (
	"fmt"
	"strings"

	"docrag/internal/domain"
)

// SystemPrompt is the fixed system message sent with every generation call.
const SystemPrompt = "You are a helpful assistant that provides accurate answers with citations."

// FormatCitation renders the stable citation string for a chunk:
// "[{document_name} – {location}]". Location precedence is page, then
// paragraph, then the chunk index. A missing document name renders as
// "Unknown". This never fails.
func FormatCitation(chunk domain.RetrievedChunk) string {
	name := chunk.DocumentName
	if name == "" {
		name = "Unknown"
	}
	var location string
	switch chunk.Location.Kind {
	case domain.LocationPage:
		location = fmt.Sprintf("page %d", chunk.Location.Number)
	case domain.LocationParagraph:
		location = fmt.Sprintf("para %d", chunk.Location.Number)
	default:
		location = fmt.Sprintf("chunk %d", chunk.ChunkIndex)
	}
	return fmt.Sprintf("[%s – %s]", name, location)
}

// Build constructs the full generation prompt: one context block per chunk,
// 1-indexed in the given order (ranking order from the search), followed by
// the instruction block and the user question.
func Build(query string, chunks []domain.RetrievedChunk) string {
	blocks := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		citation := FormatCitation(chunk)
		blocks = append(blocks, fmt.Sprintf("[%d] %s\n%s\n", i+1, citation, chunk.Text))
	}
	context := strings.Join(blocks, "\n")

	var b strings.Builder
	b.WriteString("You are a helpful assistant that answers questions based on the provided context.\n\n")
	b.WriteString("CONTEXT:\n")
	b.WriteString(context)
	b.WriteString("\n\nINSTRUCTIONS:\n")
	b.WriteString("1. Answer the user's question using ONLY the information from the context above\n")
	b.WriteString("2. After EACH sentence in your answer, add an inline citation in the format [source_name – page/section]\n")
	b.WriteString("3. Use the exact citation format shown in the context (e.g., [document.pdf – page 5])\n")
	b.WriteString("4. If the context doesn't contain enough information to answer, say so clearly\n")
	b.WriteString("5. Be concise and accurate\n\n")
	b.WriteString("USER QUESTION:\n")
	b.WriteString(query)
	b.WriteString("\n\nANSWER:")
	return b.String()
}
