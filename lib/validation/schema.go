package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// OMDbResponseSchema describes the subset of an OMDb title lookup payload this
// program reads. Every field except Response is optional but must be a string.
var OMDbResponseSchema = `{
	"type": "object",
	"properties": {
		"Response": {"type": "string", "enum": ["True", "False"]},
		"Error": {"type": "string"},
		"Title": {"type": "string"},
		"Year": {"type": "string"},
		"imdbRating": {"type": "string"},
		"Poster": {"type": "string"},
		"imdbID": {"type": "string"}
	},
	"required": ["Response"]
}`

var omdbSchema = gojsonschema.NewStringLoader(OMDbResponseSchema)

// ValidateOMDbResponse validates a raw OMDb payload against OMDbResponseSchema.
func ValidateOMDbResponse(jsonData []byte) error {
	result, err := gojsonschema.Validate(omdbSchema, gojsonschema.NewBytesLoader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to validate JSON schema: %w", err)
	}

	if !result.Valid() {
		var errorMessages []string
		for _, desc := range result.Errors() {
			errorMessages = append(errorMessages, desc.String())
		}
		return fmt.Errorf("JSON validation failed: %s", strings.Join(errorMessages, "; "))
	}

	return nil
}
