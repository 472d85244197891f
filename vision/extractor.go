// Package vision wraps the external image-understanding service that turns a
// delivery-slip photo into structured rows. The service is an opaque
// collaborator: it either returns a JSON array of row objects (keys drawn
// from the requested column schema, plus a per-row "Doute" boolean) or the
// call fails as a whole. Malformed output is never repaired into rows.
package vision

import (
	"context"
	"errors"
)

// ErrExtraction wraps every failure of the extraction call: transport,
// service error, empty or non-JSON output. Callers surface it to the user
// and leave the review state untouched.
var ErrExtraction = errors.New("extraction failed")

// Extractor is the extract(image, schema, prompt) contract.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string, columns []string, instruction string) ([]map[string]any, error)
}
