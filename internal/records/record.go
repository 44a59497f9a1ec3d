// Package records defines the document record model shared by the
// dispatcher, matcher, and verification pipeline.
package records

import (
	"time"

	"github.com/google/uuid"
)

// Classification is the document type assigned by the extraction service.
type Classification string

const (
	ClassificationLabel        Classification = "label"
	ClassificationApplication  Classification = "application"
	ClassificationUnrecognized Classification = "unrecognized"
)

// Status is the extraction lifecycle state of a record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusInFlight  Status = "in_flight"
	StatusExtracted Status = "extracted"
	StatusFailed    Status = "failed"
)

// Terminal reports whether a status is a final extraction outcome.
func (s Status) Terminal() bool {
	return s == StatusExtracted || s == StatusFailed
}

// ExtractedFields holds the structured attributes pulled from a document.
// Every field is optional: the empty string means the service did not find
// the field, not that the document carries an empty value.
type ExtractedFields struct {
	BrandName         string `json:"brandName,omitempty"`
	ClassType         string `json:"classType,omitempty"`
	ABV               string `json:"abv,omitempty"`
	NetContents       string `json:"netContents,omitempty"`
	ProducerName      string `json:"producerName,omitempty"`
	ProducerAddress   string `json:"producerAddress,omitempty"`
	CountryOfOrigin   string `json:"countryOfOrigin,omitempty"`
	BeverageType      string `json:"beverageType,omitempty"`
	GovernmentWarning string `json:"governmentWarning,omitempty"`
}

// DocumentRecord is one uploaded file plus its extraction lifecycle and
// result. Records are created on submission, mutated only through the Store
// as extraction progresses, and frozen once extracted or failed.
type DocumentRecord struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	Path     string `json:"path,omitempty"`

	// Payload is the raw file content handed to the extraction service.
	// Not serialized; the record set is in-memory only.
	Payload   []byte `json:"-"`
	MediaType string `json:"media_type"`

	// PageCount is set for PDF uploads after validation.
	PageCount int `json:"page_count,omitempty"`

	Status         Status          `json:"status"`
	Classification Classification  `json:"classification"`
	Fields         ExtractedFields `json:"extracted_fields"`
	Confidence     float64         `json:"confidence"`

	// Error detail for failed extractions.
	Error         string `json:"error,omitempty"`
	ErrorCategory string `json:"error_category,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// New creates a pending record for a file.
func New(fileName, mediaType string, payload []byte) *DocumentRecord {
	return &DocumentRecord{
		ID:             uuid.New().String(),
		FileName:       fileName,
		MediaType:      mediaType,
		Payload:        payload,
		Status:         StatusPending,
		Classification: ClassificationUnrecognized,
		CreatedAt:      time.Now().UTC(),
	}
}

// Matchable reports whether the record participates in matching: it must be
// extracted and classified as a label or an application.
func (r *DocumentRecord) Matchable() bool {
	if r.Status != StatusExtracted {
		return false
	}
	return r.Classification == ClassificationLabel || r.Classification == ClassificationApplication
}
