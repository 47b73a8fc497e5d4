package doc

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed flat.schema.json
var flatSchemaJSON string

const flatSchemaURL = "https://inkdoc.local/flat.schema.json"

var flatSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString(flatSchemaURL, flatSchemaJSON)
})

func validateFlat(data []byte) error {
	schema, err := flatSchema()
	if err != nil {
		return fmt.Errorf("compile flat schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFlat, err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFlat, err)
	}
	return nil
}
