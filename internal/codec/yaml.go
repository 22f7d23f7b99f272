package codec

import (
	"fmt"
	"io"

	"graphio/internal/domain"
	"graphio/internal/progress"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Read imports graph data from YAML
func (c *YAMLCodec) Read(r io.Reader, g domain.Builder, n progress.Notifier) error {
	var doc document
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return doc.populate(g, n)
}

// Write exports graph data to YAML
func (c *YAMLCodec) Write(g domain.View, w io.Writer, n progress.Notifier) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(newDocument(g, n)); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to flush YAML: %w", err)
	}

	return nil
}
