package core

import "errors"

// Failure kinds shared across the ingestion and chat paths. Callers match
// with errors.Is; lower layers wrap these with fmt.Errorf("...: %w", ...).
var (
	// ErrNotFound means a referenced file or document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrExtraction means the source file was unreadable or produced no pages.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmptyDocument means extraction succeeded but yielded zero passages.
	ErrEmptyDocument = errors.New("no extractable text in document")

	// ErrEmbedding means the embedding provider failed; ingestion aborts and
	// leaves no partial collection behind.
	ErrEmbedding = errors.New("embedding failed")

	// ErrInvalidRequest means a required field was empty or missing.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUpstream means the language model was unreachable, timed out, or
	// returned a malformed response.
	ErrUpstream = errors.New("language model unavailable")
)
