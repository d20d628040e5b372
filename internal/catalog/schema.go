package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const listSchemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "array",
	"items": {"type": "object"}
}`

const imageSchemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["id"],
	"properties": {
		"id": {"type": "string"},
		"url": {"type": "string"},
		"breeds": {"type": "array", "items": {"type": "object"}}
	}
}`

var (
	listSchema  = jsonschema.MustCompileString("catalog/list.json", listSchemaJSON)
	imageSchema = jsonschema.MustCompileString("catalog/image.json", imageSchemaJSON)
)

// decodeValidated checks body against schema and then decodes it into out.
// Any failure is reported as a ValidationError.
func decodeValidated(op string, schema *jsonschema.Schema, body []byte, out any) error {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return &ValidationError{Op: op, Err: fmt.Errorf("body is not valid JSON: %w", err)}
	}
	if err := schema.Validate(raw); err != nil {
		return &ValidationError{Op: op, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &ValidationError{Op: op, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}
