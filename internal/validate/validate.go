package validate

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "mem://mindmap.schema.json"

//go:embed mindmap.schema.json
var schemaJSON []byte

var (
	once    sync.Once
	schema  *jsonschema.Schema
	loadErr error
)

func load() {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		loadErr = err
		return
	}
	s, err := c.Compile(schemaURL)
	if err != nil {
		loadErr = err
		return
	}
	schema = s
}

// Schema returns the raw mind-map JSON Schema document.
func Schema() []byte { return schemaJSON }

// MindMapJSON validates a raw JSON document against the mind-map schema.
func MindMapJSON(raw []byte) error {
	once.Do(load)
	if loadErr != nil {
		return loadErr
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return schema.Validate(v)
}

// MindMap validates any JSON-marshalable value against the mind-map schema.
func MindMap(m any) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return MindMapJSON(b)
}
