// Package uigen validates structured UI objects produced by a provider and
// synthesizes fixed-template replacements when none is usable.
package uigen

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"answer-gateway/internal/domain"
)

// SchemaName labels the schema in structured-output requests.
const SchemaName = "ui_generation_result"

// ErrInvalidResult is returned when provider output does not conform to the
// UIGenerationResult schema.
var ErrInvalidResult = errors.New("uigen: invalid result")

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	resolved   *jsonschema.Resolved
	schemaErr  error
)

func buildSchema() *jsonschema.Schema {
	kinds := make([]any, 0, len(domain.UIKinds))
	for _, k := range domain.UIKinds {
		kinds = append(kinds, string(k))
	}
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"type", "content", "ui"},
		Properties: map[string]*jsonschema.Schema{
			"type":    {Type: "string", Enum: kinds},
			"content": {Type: "string"},
			"ui": {
				Type:     "object",
				Required: []string{"html", "interactive"},
				Properties: map[string]*jsonschema.Schema{
					"html":        {Type: "string"},
					"interactive": {Type: "boolean"},
					"data":        {Type: "object"},
				},
			},
		},
	}
}

func load() (*jsonschema.Schema, *jsonschema.Resolved, error) {
	schemaOnce.Do(func() {
		schema = buildSchema()
		resolved, schemaErr = schema.Resolve(nil)
	})
	return schema, resolved, schemaErr
}

// Schema returns the JSON Schema of a UIGenerationResult, suitable for a
// provider's structured-output request.
func Schema() *jsonschema.Schema {
	s, _, _ := load()
	return s
}

// Validate parses raw provider output and checks it against the schema.
func Validate(raw string) (domain.UIGenerationResult, error) {
	_, rs, err := load()
	if err != nil {
		return domain.UIGenerationResult{}, fmt.Errorf("uigen: resolve schema: %w", err)
	}

	var instance any
	if err := json.Unmarshal([]byte(raw), &instance); err != nil {
		return domain.UIGenerationResult{}, fmt.Errorf("%w: %w", ErrInvalidResult, err)
	}
	if err := rs.Validate(instance); err != nil {
		return domain.UIGenerationResult{}, fmt.Errorf("%w: %w", ErrInvalidResult, err)
	}

	var out domain.UIGenerationResult
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return domain.UIGenerationResult{}, fmt.Errorf("%w: %w", ErrInvalidResult, err)
	}
	return out, nil
}
