package extract

import (
	"strings"
	"testing"

	"colacheck/internal/records"
)

const validResponse = `{
  "classification": "label",
  "confidence": 0.92,
  "extractedFields": {
    "brandName": "Old Forge Bourbon",
    "classType": "Kentucky Straight Bourbon Whiskey",
    "abv": "45% Alc./Vol.",
    "netContents": "750 mL",
    "producerName": null,
    "producerAddress": null,
    "countryOfOrigin": null,
    "beverageType": "Distilled Spirits",
    "governmentWarning": null
  }
}`

func TestParseResponse_Valid(t *testing.T) {
	res, err := ParseResponse(validResponse)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if res.Classification != records.ClassificationLabel {
		t.Errorf("expected label, got %s", res.Classification)
	}
	if res.Confidence != 0.92 {
		t.Errorf("expected confidence 0.92, got %v", res.Confidence)
	}
	if res.Fields.BrandName != "Old Forge Bourbon" {
		t.Errorf("unexpected brand %q", res.Fields.BrandName)
	}
	// null means the field is absent.
	if res.Fields.ProducerName != "" {
		t.Errorf("null field should map to empty string, got %q", res.Fields.ProducerName)
	}
}

func TestParseResponse_CodeFences(t *testing.T) {
	fenced := "```json\n" + validResponse + "\n```"
	res, err := ParseResponse(fenced)
	if err != nil {
		t.Fatalf("fenced response should parse: %v", err)
	}
	if res.Fields.BrandName != "Old Forge Bourbon" {
		t.Errorf("unexpected brand %q", res.Fields.BrandName)
	}
}

func TestParseResponse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"not json", "the document is a label"},
		{"unknown classification", `{"classification":"receipt","confidence":0.5,"extractedFields":{}}`},
		{"confidence out of range", `{"classification":"label","confidence":1.5,"extractedFields":{}}`},
		{"missing fields object", `{"classification":"label","confidence":0.5}`},
		{"unexpected field key", `{"classification":"label","confidence":0.5,"extractedFields":{"sku":"123"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseResponse(tt.in); err == nil {
				t.Errorf("expected error for %q", tt.in)
			}
		})
	}
}

func TestParseResponse_TrimsWhitespace(t *testing.T) {
	padded := strings.ReplaceAll(validResponse, `"Old Forge Bourbon"`, `"  Old Forge Bourbon  "`)
	res, err := ParseResponse(padded)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if res.Fields.BrandName != "Old Forge Bourbon" {
		t.Errorf("field values should be trimmed, got %q", res.Fields.BrandName)
	}
}
