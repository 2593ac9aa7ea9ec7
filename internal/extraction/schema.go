package extraction

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const resultSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["vendor_name", "invoice_id", "invoice_date", "total_amount", "currency", "raw_text"],
  "properties": {
    "vendor_name": {"type": "string"},
    "invoice_id": {"type": "string"},
    "invoice_date": {"type": "string"},
    "total_amount": {"type": "number"},
    "currency": {"type": "string"},
    "raw_text": {"type": "string"}
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("invoice_extraction.json", strings.NewReader(resultSchema)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("invoice_extraction.json")
	})
	return schema, schemaErr
}

// SchemaWarnings checks r against the six-key contract. Warnings are
// informational and never reject a result.
func SchemaWarnings(r Result) []string {
	s, err := compiledSchema()
	if err != nil {
		return []string{fmt.Sprintf("schema unavailable: %v", err)}
	}
	err = s.Validate(map[string]any(r))
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}

	var warnings []string
	for _, leaf := range leaves(ve) {
		loc := leaf.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		warnings = append(warnings, loc+": "+leaf.Message)
	}
	sort.Strings(warnings)
	return warnings
}

func leaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, c := range ve.Causes {
		out = append(out, leaves(c)...)
	}
	return out
}
