package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"colacheck/internal/records"
)

// responseSchemaJSON is the wire contract for the extraction service's
// answer. Responses are validated locally before anything touches a record.
const responseSchemaJSON = `{
  "type": "object",
  "properties": {
    "classification": {
      "type": "string",
      "enum": ["label", "application", "unrecognized"]
    },
    "confidence": {
      "type": "number",
      "minimum": 0,
      "maximum": 1
    },
    "extractedFields": {
      "type": "object",
      "properties": {
        "brandName": {"type": ["string", "null"]},
        "classType": {"type": ["string", "null"]},
        "abv": {"type": ["string", "null"]},
        "netContents": {"type": ["string", "null"]},
        "producerName": {"type": ["string", "null"]},
        "producerAddress": {"type": ["string", "null"]},
        "countryOfOrigin": {"type": ["string", "null"]},
        "beverageType": {"type": ["string", "null"]},
        "governmentWarning": {"type": ["string", "null"]}
      },
      "additionalProperties": false
    }
  },
  "required": ["classification", "confidence", "extractedFields"],
  "additionalProperties": false
}`

var responseSchema = jsonschema.MustCompileString("classify_response.json", responseSchemaJSON)

// ResponseSchemaJSON returns the raw contract schema, for clients that pass
// it to the service as a structured-output format.
func ResponseSchemaJSON() json.RawMessage {
	return json.RawMessage(responseSchemaJSON)
}

// wireResponse mirrors the contract. Field values may be JSON null, which
// means "not present on the document".
type wireResponse struct {
	Classification string     `json:"classification"`
	Confidence     float64    `json:"confidence"`
	Fields         wireFields `json:"extractedFields"`
}

type wireFields struct {
	BrandName         *string `json:"brandName"`
	ClassType         *string `json:"classType"`
	ABV               *string `json:"abv"`
	NetContents       *string `json:"netContents"`
	ProducerName      *string `json:"producerName"`
	ProducerAddress   *string `json:"producerAddress"`
	CountryOfOrigin   *string `json:"countryOfOrigin"`
	BeverageType      *string `json:"beverageType"`
	GovernmentWarning *string `json:"governmentWarning"`
}

// ParseResponse parses and validates raw model output against the contract.
// Markdown code fences around the JSON are tolerated; anything else that
// fails schema validation is a malformed response.
func ParseResponse(content string) (*Result, error) {
	raw := stripCodeFences(content)
	if raw == "" {
		return nil, fmt.Errorf("empty extraction response")
	}

	var generic any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return nil, fmt.Errorf("malformed extraction response: %w", err)
	}
	if err := responseSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("extraction response failed contract validation: %w", err)
	}

	var wire wireResponse
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, fmt.Errorf("malformed extraction response: %w", err)
	}

	return &Result{
		Classification: records.Classification(wire.Classification),
		Confidence:     wire.Confidence,
		Fields: records.ExtractedFields{
			BrandName:         deref(wire.Fields.BrandName),
			ClassType:         deref(wire.Fields.ClassType),
			ABV:               deref(wire.Fields.ABV),
			NetContents:       deref(wire.Fields.NetContents),
			ProducerName:      deref(wire.Fields.ProducerName),
			ProducerAddress:   deref(wire.Fields.ProducerAddress),
			CountryOfOrigin:   deref(wire.Fields.CountryOfOrigin),
			BeverageType:      deref(wire.Fields.BeverageType),
			GovernmentWarning: deref(wire.Fields.GovernmentWarning),
		},
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// stripCodeFences removes a surrounding markdown code fence, if present.
func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
