package state

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed state.schema.json
var schemaJSON []byte

const schemaURL = "https://install-release.github.io/schema/state.schema.json"

type schemas struct {
	document *jsonschema.Schema
	record   *jsonschema.Schema
}

var compileSchemas = sync.OnceValues(func() (schemas, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return schemas{}, fmt.Errorf("parse state schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return schemas{}, fmt.Errorf("add state schema: %w", err)
	}
	document, err := c.Compile(schemaURL)
	if err != nil {
		return schemas{}, err
	}
	record, err := c.Compile(schemaURL + "#/$defs/record")
	if err != nil {
		return schemas{}, err
	}
	return schemas{document: document, record: record}, nil
})

// ValidateDocument checks raw JSON against the whole state document schema.
// One bad record fails the document; DecodeDocument is more forgiving.
func ValidateDocument(data []byte) error {
	s, err := compileSchemas()
	if err != nil {
		return err
	}
	return validate(s.document, data, "invalid state document")
}

// ValidateRecord checks the JSON of a single record.
func ValidateRecord(data []byte) error {
	s, err := compileSchemas()
	if err != nil {
		return err
	}
	return validate(s.record, data, "invalid state record")
}

func validate(sch *jsonschema.Schema, data []byte, what string) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}
