package registry

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

// Schema returns the JSON schema of registry documents.
func Schema() []byte {
	return append([]byte(nil), schemaJSON...)
}

// ValidationError lists the schema violations of a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("registry document is invalid:\n  %s", strings.Join(e.Problems, "\n  "))
}

var registrySchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// Validate checks a JSON document against the registry schema. Schema
// violations are reported as *ValidationError.
func Validate(doc []byte) error {
	schema, err := registrySchema()
	if err != nil {
		return fmt.Errorf("load registry schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validate registry: %w", err)
	}
	if result.Valid() {
		return nil
	}
	verr := &ValidationError{}
	for _, desc := range result.Errors() {
		verr.Problems = append(verr.Problems, desc.String())
	}
	return verr
}
