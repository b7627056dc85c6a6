package domain

import "errors"

// Failure kinds surfaced by the pipelines and collaborator adapters. Callers
// classify with errors.Is; the wrapped cause stays available for logging.
var (
	// ErrUnsupportedFormat marks a file whose extension no loader handles.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrExtraction marks a file that matched a loader but could not be parsed.
	ErrExtraction = errors.New("document extraction failed")
	// ErrNoDocuments means no file in an ingestion batch yielded any sections.
	ErrNoDocuments = errors.New("no documents were successfully loaded")
	// ErrNoChunks means chunking produced nothing from non-empty input.
	ErrNoChunks = errors.New("no chunks were created")
	// ErrEmbedding wraps a failed embedding call.
	ErrEmbedding = errors.New("embedding failed")
	// ErrStore wraps a failed vector store call.
	ErrStore = errors.New("vector store request failed")
	// ErrGeneration wraps a failed completion call.
	ErrGeneration = errors.New("generation failed")
)
