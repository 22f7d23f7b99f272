package codec

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"graphio/internal/domain"
	"graphio/internal/progress"
)

// documentVersion is the version written by the document based formats
// (json, yaml, msgpack). Readers accept it and the legacy unversioned 0.
const documentVersion = 1

// document is the tree shape shared by the json, yaml and msgpack formats
type document struct {
	Version int           `json:"version" yaml:"version" msgpack:"version"`
	Nodes   []domain.Node `json:"nodes" yaml:"nodes" msgpack:"nodes"`
	Edges   []domain.Edge `json:"edges" yaml:"edges" msgpack:"edges"`
}

// newDocument snapshots g, reporting one step per node and edge
func newDocument(g domain.View, n progress.Notifier) *document {
	doc := &document{
		Version: documentVersion,
		Nodes:   make([]domain.Node, 0, g.NodeCount()),
		Edges:   make([]domain.Edge, 0, g.EdgeCount()),
	}

	steps := progress.NewSteps(n, g.NodeCount()+g.EdgeCount())
	for _, node := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, node)
		steps.Tick()
	}
	for _, edge := range g.Edges() {
		doc.Edges = append(doc.Edges, edge)
		steps.Tick()
	}
	return doc
}

// populate adds the decoded nodes then edges to g
func (d *document) populate(g domain.Builder, n progress.Notifier) error {
	if d.Version > documentVersion {
		return fmt.Errorf("%w: %d", ErrVersion, d.Version)
	}

	steps := progress.NewSteps(n, len(d.Nodes)+len(d.Edges))
	for _, node := range d.Nodes {
		if err := g.AddNode(node); err != nil {
			return fmt.Errorf("add node %q: %w", node.ID, err)
		}
		steps.Tick()
	}
	for _, edge := range d.Edges {
		if err := g.AddEdge(edge); err != nil {
			return fmt.Errorf("add edge %q: %w", edge.ID, err)
		}
		steps.Tick()
	}
	return nil
}

// checkUTF8 rejects documents holding strings that are not valid UTF-8.
// JSON would silently replace such bytes with U+FFFD.
func (d *document) checkUTF8() error {
	for _, node := range d.Nodes {
		if err := checkStrings(fmt.Sprintf("node %q", node.ID), node.Attributes, node.ID, node.Label, string(node.Type)); err != nil {
			return err
		}
	}
	for _, edge := range d.Edges {
		if err := checkStrings(fmt.Sprintf("edge %q", edge.ID), edge.Attributes, edge.ID, edge.From, edge.To, string(edge.Type)); err != nil {
			return err
		}
	}
	return nil
}

func checkStrings(owner string, attrs map[string]string, fields ...string) error {
	for _, f := range fields {
		if !utf8.ValidString(f) {
			return fmt.Errorf("%s: %w", owner, ErrInvalidUTF8)
		}
	}
	for k, v := range attrs {
		if !utf8.ValidString(k) || !utf8.ValidString(v) {
			return fmt.Errorf("%s attribute %q: %w", owner, k, ErrInvalidUTF8)
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
