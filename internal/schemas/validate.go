// Package schemas validates knowledge-service JSON replies before they are
// trusted. The service may hallucinate or return malformed documents, so
// every structured reply is checked against a schema first.
package schemas

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Embedded reply schemas. Kept in code rather than on disk so validation
// works regardless of working directory.
const (
	// PropertyName is the schema for identity-extraction replies.
	PropertyName = `{
		"type": "object",
		"required": ["property_name"],
		"properties": {
			"property_name": {"type": "string", "maxLength": 200}
		}
	}`

	// BookingURLs is the schema for booking-URL suggestion replies.
	BookingURLs = `{
		"type": "object",
		"required": ["urls"],
		"properties": {
			"urls": {
				"type": "array",
				"maxItems": 25,
				"items": {"type": "string"}
			}
		}
	}`

	// ChainCode is the schema for GDS chain-code replies.
	ChainCode = `{
		"type": "object",
		"required": ["chain_code"],
		"properties": {
			"chain_code": {"type": "string", "maxLength": 8}
		}
	}`
)

// ValidationError reports why a reply failed schema validation.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "reply validation failed: " + strings.Join(e.Errors, "; ")
}

// ValidateReply validates a JSON document against one of the embedded
// schemas. A nil return means the document can be unmarshaled safely.
func ValidateReply(schema string, document string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(document),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{}
	for _, desc := range result.Errors() {
		ve.Errors = append(ve.Errors, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return ve
}
