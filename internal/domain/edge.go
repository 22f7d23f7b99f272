package domain

import (
	"crypto/sha256"
	"fmt"
)

// EdgeType is a free-form classification of an edge
type EdgeType string

const (
	EdgeTypeDefault EdgeType = ""
)

// Edge is a directed connection from one node to another
type Edge struct {
	ID         string            `json:"id" yaml:"id" msgpack:"id"`
	From       string            `json:"from" yaml:"from" msgpack:"from"`
	To         string            `json:"to" yaml:"to" msgpack:"to"`
	Type       EdgeType          `json:"type,omitempty" yaml:"type,omitempty" msgpack:"type,omitempty"`
	Weight     float64           `json:"weight,omitempty" yaml:"weight,omitempty" msgpack:"weight,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty" msgpack:"attributes,omitempty"`
}

// NewEdge creates a new edge with a generated ID
func NewEdge(from, to string, edgeType EdgeType) *Edge {
	edge := &Edge{
		From:       from,
		To:         to,
		Type:       edgeType,
		Attributes: make(map[string]string),
	}
	edge.ID = edge.GenerateID()
	return edge
}

// GenerateID creates a deterministic ID for the edge based on its endpoints.
// Direction matters: a->b and b->a get different IDs.
func (e *Edge) GenerateID() string {
	key := fmt.Sprintf("%s->%s-%s", e.From, e.To, e.Type)
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", hash[:8])
}

// SetAttribute sets an attribute value
func (e *Edge) SetAttribute(key, value string) {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[key] = value
}

// GetAttribute gets an attribute value
func (e *Edge) GetAttribute(key string) (string, bool) {
	if e.Attributes == nil {
		return "", false
	}
	val, ok := e.Attributes[key]
	return val, ok
}

func (e Edge) clone() Edge {
	e.Attributes = cloneAttributes(e.Attributes)
	return e
}
