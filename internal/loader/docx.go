package loader

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"docrag/internal/domain"
)

// loadDOCX extracts one section per non-empty paragraph of the main document
// part. Paragraph indexes are 1-based and count every paragraph, including
// the empty ones that are skipped.
func loadDOCX(content []byte, filename string) ([]domain.DocumentSection, error) {
	archive, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrExtraction, filename, err)
	}

	var document io.ReadCloser
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			document, err = f.Open()
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", domain.ErrExtraction, filename, err)
			}
			break
		}
	}
	if document == nil {
		return nil, fmt.Errorf("%w: %s: missing word/document.xml", domain.ErrExtraction, filename)
	}
	defer document.Close()

	sections, err := parseDocumentXML(document, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrExtraction, filename, err)
	}
	return sections, nil
}

// parseDocumentXML walks the WordprocessingML token stream, collecting the
// text runs (<w:t>) of each paragraph (<w:p>).
func parseDocumentXML(r io.Reader, filename string) ([]domain.DocumentSection, error) {
	decoder := xml.NewDecoder(r)

	var sections []domain.DocumentSection
	var paragraph strings.Builder
	inParagraph := false
	inText := false
	paragraphIndex := 0

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				paragraphIndex++
				paragraph.Reset()
			case "t":
				inText = inParagraph
			case "tab":
				if inParagraph {
					paragraph.WriteByte('\t')
				}
			case "br", "cr":
				if inParagraph {
					paragraph.WriteByte('\n')
				}
			}
		case xml.CharData:
			if inText {
				paragraph.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				inParagraph = false
				text := strings.TrimSpace(paragraph.String())
				if text != "" {
					sections = append(sections, domain.DocumentSection{
						Text:         text,
						DocumentName: filename,
						Location:     domain.ParagraphLocation(paragraphIndex),
					})
				}
			}
		}
	}
	return sections, nil
}
