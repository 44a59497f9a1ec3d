// Package extract talks to the external document-understanding service.
// The service is an opaque collaborator: it takes one document payload and
// returns a classification, a confidence score, and structured fields, or
// an error. Nothing here retries automatically; retry is caller-initiated
// per record.
package extract

import (
	"context"
	"time"

	"colacheck/internal/records"
)

// Request is one document submitted for classification and extraction.
type Request struct {
	// Payload is the raw file content.
	Payload []byte
	// MediaType is the declared content type (image/png, application/pdf, ...).
	MediaType string
	// FileName is used for PDF document parts and request logging.
	FileName string
	// RequestID correlates logs across the dispatcher and client.
	RequestID string
}

// Result is the service's answer for one document.
type Result struct {
	Classification records.Classification  `json:"classification"`
	Confidence     float64                 `json:"confidence"`
	Fields         records.ExtractedFields `json:"extractedFields"`
}

// Extractor is implemented by extraction-service clients.
type Extractor interface {
	// Name returns the client identifier (e.g. "openai").
	Name() string

	// Extract classifies one document and pulls its structured fields.
	// Callers bound the call with a context deadline; the client honors it.
	Extract(ctx context.Context, req *Request) (*Result, error)

	// HealthCheck verifies the service is reachable and credentials are valid.
	HealthCheck(ctx context.Context) error
}

// DefaultTimeout bounds a single extraction call when the caller does not
// provide its own deadline.
const DefaultTimeout = 60 * time.Second
