package extract

import (
	"context"
	"fmt"

	"github.com/dvloznov/statement-copilot/internal/domain"
	"github.com/dvloznov/statement-copilot/internal/ingest"
)

// Extractor turns an encoded statement file into a typed dataset.
// This interface enables mocking of the AI call in tests.
type Extractor interface {
	// Extract issues one request to the document-understanding model and
	// returns the parsed statement. There are no retries and no partial
	// results: the call either succeeds or fails as a whole.
	Extract(ctx context.Context, payload *ingest.Payload) (*domain.ParsedStatement, error)
}

// ExtractionError reports a failed extraction: a transport failure, an
// empty response, or a response that does not match the contracted shape.
// It always propagates to the caller; malformed output is never defaulted.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extract: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
