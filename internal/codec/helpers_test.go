package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"

	"graphio/internal/domain"
	"graphio/internal/progress"

	"github.com/stretchr/testify/require"
)

// sampleGraph builds a graph exercising every node and edge field
func sampleGraph(t *testing.T, nodes int) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	for i := 0; i < nodes; i++ {
		node := domain.NewNode(fmt.Sprintf("n%d", i), "service", fmt.Sprintf("Node \"%d\"", i))
		if i%2 == 0 {
			node.SetAttribute("zone", "eu-west")
			node.SetAttribute("note", "line\nbreak: yes")
		}
		require.NoError(t, g.AddNode(*node))
	}
	for i := 0; i+1 < nodes; i++ {
		edge := domain.NewEdge(fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", i+1), "calls")
		edge.Weight = float64(i) + 0.25
		edge.SetAttribute("proto", "grpc")
		require.NoError(t, g.AddEdge(*edge))
	}
	if nodes > 1 {
		require.NoError(t, g.AddEdge(domain.Edge{ID: "back", From: fmt.Sprintf("n%d", nodes-1), To: "n0"}))
	}
	return g
}

// newTestLogger captures diagnostic output
func newTestLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}

// recordingCodec records the calls it receives
type recordingCodec struct {
	calls []string
}

func (r *recordingCodec) Write(g domain.View, w io.Writer, n progress.Notifier) error {
	r.calls = append(r.calls, "write")
	n.Report(0.5)
	_, err := fmt.Fprintf(w, "%d %d", g.NodeCount(), g.EdgeCount())
	return err
}

func (r *recordingCodec) Read(rd io.Reader, g domain.Builder, n progress.Notifier) error {
	r.calls = append(r.calls, "read")
	var nodes, edges int
	if _, err := fmt.Fscanf(rd, "%d %d", &nodes, &edges); err != nil {
		return err
	}
	for i := 0; i < nodes; i++ {
		if err := g.AddNode(domain.Node{ID: fmt.Sprintf("n%d", i)}); err != nil {
			return err
		}
	}
	return nil
}

// writeOnly and readOnly expose a single capability
type writeOnly struct{ inner recordingCodec }

func (w *writeOnly) Write(g domain.View, wr io.Writer, n progress.Notifier) error {
	return w.inner.Write(g, wr, n)
}

type readOnly struct{ inner recordingCodec }

func (r *readOnly) Read(rd io.Reader, g domain.Builder, n progress.Notifier) error {
	return r.inner.Read(rd, g, n)
}

// callRecorder is a notifier remembering call order
type callRecorder struct {
	calls []string
}

func (c *callRecorder) Begin() { c.calls = append(c.calls, "begin") }
func (c *callRecorder) Report(float64) { c.calls = append(c.calls, "report") }
func (c *callRecorder) End() { c.calls = append(c.calls, "end") }

// closingNotifier tracks whether its owner released it
type closingNotifier struct {
	progress.Nop
	closed int
	err    error
}

func (c *closingNotifier) Close() error {
	c.closed++
	return c.err
}

var errBrokenPipe = errors.New("broken pipe")

// failingWriter accepts limit bytes then fails
type failingWriter struct {
	limit int
}

func (f *failingWriter) Write(p []byte) (int, error) {
	if len(p) > f.limit {
		n := f.limit
		f.limit = 0
		return n, errBrokenPipe
	}
	f.limit -= len(p)
	return len(p), nil
}
