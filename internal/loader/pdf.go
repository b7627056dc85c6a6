package loader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"docrag/internal/domain"
)

// loadPDF extracts one section per page that has text content. Page numbers
// are 1-based.
func loadPDF(content []byte, filename string) (sections []domain.DocumentSection, err error) {
	// The pdf library panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			sections = nil
			err = fmt.Errorf("%w: %s: %v", domain.ErrExtraction, filename, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrExtraction, filename, err)
	}

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %s page %d: %v", domain.ErrExtraction, filename, pageNum, err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		sections = append(sections, domain.DocumentSection{
			Text:         text,
			DocumentName: filename,
			Location:     domain.PageLocation(pageNum),
		})
	}
	return sections, nil
}
