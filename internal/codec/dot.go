package codec

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"graphio/internal/domain"
	"graphio/internal/progress"
)

// DOTCodec exports graphs as Graphviz digraphs. It is write-only: DOT
// carries layout hints and loses edge IDs, so it is not read back.
type DOTCodec struct {
	// Name is the graph identifier written after "digraph".
	Name string
}

// NewDOTCodec creates a new DOT exporter
func NewDOTCodec() *DOTCodec {
	return &DOTCodec{Name: "G"}
}

// Format returns the codec format identifier
func (c *DOTCodec) Format() string {
	return "dot"
}

// Write exports graph data to DOT
func (c *DOTCodec) Write(g domain.View, w io.Writer, n progress.Notifier) error {
	bw := bufio.NewWriter(w)
	steps := progress.NewSteps(n, g.NodeCount()+g.EdgeCount())

	fmt.Fprintf(bw, "digraph %s {\n", strconv.Quote(c.Name))
	for _, node := range g.Nodes() {
		attrs := map[string]string{}
		for k, v := range node.Attributes {
			attrs[k] = v
		}
		if node.Label != "" {
			attrs["label"] = node.Label
		}
		if node.Type != "" {
			attrs["type"] = string(node.Type)
		}
		fmt.Fprintf(bw, "  %s%s;\n", strconv.Quote(node.ID), dotAttributes(attrs))
		steps.Tick()
	}
	for _, edge := range g.Edges() {
		attrs := map[string]string{}
		for k, v := range edge.Attributes {
			attrs[k] = v
		}
		if edge.Type != "" {
			attrs["label"] = string(edge.Type)
		}
		if edge.Weight != 0 {
			attrs["weight"] = strconv.FormatFloat(edge.Weight, 'g', -1, 64)
		}
		fmt.Fprintf(bw, "  %s -> %s%s;\n", strconv.Quote(edge.From), strconv.Quote(edge.To), dotAttributes(attrs))
		steps.Tick()
	}
	fmt.Fprintln(bw, "}")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write DOT: %w", err)
	}
	return nil
}

func dotAttributes(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(attrs))
	for _, k := range sortedKeys(attrs) {
		parts = append(parts, fmt.Sprintf("%s=%s", strconv.Quote(k), strconv.Quote(attrs[k])))
	}
	return " [" + strings.Join(parts, ", ") + "]"
}
