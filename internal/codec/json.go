package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"graphio/internal/domain"
	"graphio/internal/progress"
)

// JSONCodec handles JSON import/export
type JSONCodec struct {
	// Indent is the per-level indentation; empty writes compact JSON.
	Indent string
}

// NewJSONCodec creates a new JSON codec writing two-space indented output
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: "  "}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Read imports graph data from JSON
func (c *JSONCodec) Read(r io.Reader, g domain.Builder, n progress.Notifier) error {
	var doc document
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return doc.populate(g, n)
}

// Write exports graph data to JSON
func (c *JSONCodec) Write(g domain.View, w io.Writer, n progress.Notifier) error {
	encoder := json.NewEncoder(w)
	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	doc := newDocument(g, n)
	if err := doc.checkUTF8(); err != nil {
		return err
	}
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
