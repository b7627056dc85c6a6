// Package loader extracts text sections from uploaded document files,
// routing on the filename extension.
package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"docrag/internal/domain"
)

// Loader turns raw file bytes into document sections with location metadata.
type Loader struct{}

func New() *Loader { return &Loader{} }

// SupportedExtension reports whether the filename carries an ingestable
// extension.
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx", ".doc":
		return true
	}
	return false
}

// Load extracts sections from the file. PDF pages carry page locations,
// DOCX paragraphs carry paragraph locations. Unrecognized extensions fail
// with ErrUnsupportedFormat, corrupt files with ErrExtraction.
func (l *Loader) Load(content []byte, filename string) ([]domain.DocumentSection, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return loadPDF(content, filename)
	case ".docx", ".doc":
		return loadDOCX(content, filename)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filename)
	}
}
