package watcher

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"graphio/internal/codec"
	"graphio/internal/domain"
)

// syncBuffer is a log sink safe for the timer goroutine
type syncBuffer struct {
	mu sync.Mutex
	sb strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.String()
}

func writeGraph(t *testing.T, path string, ids ...string) {
	t.Helper()
	g := domain.NewGraph()
	for _, id := range ids {
		if err := g.AddNode(*domain.NewNode(id, "host", id)); err != nil {
			t.Fatal(err)
		}
	}
	tmp := path + ".tmp"
	if err := codec.New("json", codec.NewJSONCodec()).WriteFile(g, tmp); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
}

func waitFor(t *testing.T, ch <-chan *domain.Graph) *domain.Graph {
	t.Helper()
	select {
	case g := <-ch:
		return g
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
		return nil
	}
}

type failingReader struct{}

func (failingReader) ReadFile(string, domain.Builder) error {
	return errors.New("boom")
}

func TestReloadKeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")
	writeGraph(t, path, "a", "b")

	logs := &syncBuffer{}
	w := New(path, codec.New("json", codec.NewJSONCodec()), nil).WithLogger(newLogger(logs))

	if err := w.Reload(); err != nil {
		t.Fatalf("Reload() error: %v", err)
	}
	first := w.Current()
	if first == nil || first.NodeCount() != 2 {
		t.Fatalf("Current() = %v, want 2 nodes", first)
	}

	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := w.Reload(); err == nil {
		t.Fatal("Reload() should fail on malformed file")
	}
	if w.Current() != first {
		t.Error("Current() should keep the previous graph")
	}
	if !strings.Contains(logs.String(), "keeping previous graph") {
		t.Errorf("expected failure to be logged, got %q", logs.String())
	}
}

func TestReloadWithoutFile(t *testing.T) {
	w := New("/nonexistent/graph.json", failingReader{}, func(*domain.Graph) {
		t.Error("onReload should not be called")
	}).WithLogger(newLogger(&syncBuffer{}))

	if err := w.Reload(); err == nil {
		t.Fatal("expected error")
	}
	if w.Current() != nil {
		t.Error("Current() should stay nil")
	}
}

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")
	writeGraph(t, path, "a")

	reloads := make(chan *domain.Graph, 4)
	w := New(path, codec.New("json", codec.NewJSONCodec()), func(g *domain.Graph) {
		reloads <- g
	}).WithDebounce(20 * time.Millisecond).WithLogger(newLogger(&syncBuffer{}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	if g := waitFor(t, reloads); g.NodeCount() != 1 {
		t.Fatalf("initial load has %d nodes, want 1", g.NodeCount())
	}

	writeGraph(t, path, "a", "b", "c")
	if g := waitFor(t, reloads); g.NodeCount() != 3 {
		t.Fatalf("reload has %d nodes, want 3", g.NodeCount())
	}
	if w.Current().NodeCount() != 3 {
		t.Errorf("Current() has %d nodes, want 3", w.Current().NodeCount())
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Watch() = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	w := New("/nonexistent/dir/graph.json", failingReader{}, nil).WithLogger(newLogger(&syncBuffer{}))
	if err := w.Watch(context.Background()); err == nil {
		t.Fatal("expected error watching a missing directory")
	}
}

func newLogger(b *syncBuffer) *log.Logger {
	return log.New(b, "", 0)
}
