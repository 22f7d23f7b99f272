package codec

import (
	"bytes"
	"strings"
	"testing"

	"graphio/internal/domain"
	"graphio/internal/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bidirectional() map[string]*Codec {
	return map[string]*Codec{
		"json":    New("json", NewJSONCodec()),
		"compact": New("json", &JSONCodec{}),
		"yaml":    New("yaml", NewYAMLCodec()),
		"msgpack": New("msgpack", NewMsgPackCodec()),
		"binary":  New("binary", NewBinaryCodec()),
	}
}

func TestRoundTrip(t *testing.T) {
	sizes := []int{0, 1, 2, 50}

	for name, c := range bidirectional() {
		for _, size := range sizes {
			c, size := c, size
			t.Run(name, func(t *testing.T) {
				g := sampleGraph(t, size)

				var buf bytes.Buffer
				require.NoError(t, c.Write(g, &buf))

				decoded := domain.NewGraph()
				require.NoError(t, c.Read(&buf, decoded))
				assert.True(t, domain.Equal(g, decoded), "size %d", size)
			})
		}
	}
}

func nonUTF8Graph(t *testing.T) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	require.NoError(t, g.AddNode(*domain.NewNode("a\xffb", "", "")))
	require.NoError(t, g.AddNode(*domain.NewNode("c", "", "")))
	require.NoError(t, g.AddEdge(*domain.NewEdge("a\xffb", "c", "")))
	return g
}

func TestRoundTripPreservesBytes(t *testing.T) {
	for name, c := range bidirectional() {
		if c.Format() == "json" {
			continue
		}
		c := c
		t.Run(name, func(t *testing.T) {
			g := nonUTF8Graph(t)

			var buf bytes.Buffer
			require.NoError(t, c.Write(g, &buf))

			decoded := domain.NewGraph()
			require.NoError(t, c.Read(&buf, decoded))
			assert.True(t, domain.Equal(g, decoded))
		})
	}
}

func TestJSONRejectsInvalidUTF8(t *testing.T) {
	attr := domain.NewGraph()
	node := domain.NewNode("n", "", "")
	node.SetAttribute("note", "bad\xc3")
	require.NoError(t, attr.AddNode(*node))

	for name, g := range map[string]*domain.Graph{"id": nonUTF8Graph(t), "attribute": attr} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			err := New("json", NewJSONCodec()).Write(g, &buf)

			var encErr *EncodeError
			require.ErrorAs(t, err, &encErr)
			assert.ErrorIs(t, err, ErrInvalidUTF8)
		})
	}
}

func TestRoundTripReportsProgress(t *testing.T) {
	for name, c := range bidirectional() {
		c := c
		t.Run(name, func(t *testing.T) {
			var writes, reads []float64
			g := sampleGraph(t, 10)

			var buf bytes.Buffer
			c.RegisterNotifier(progress.Func(func(f float64) { writes = append(writes, f) }))
			require.NoError(t, c.Write(g, &buf))

			c.RegisterNotifier(progress.Func(func(f float64) { reads = append(reads, f) }))
			require.NoError(t, c.Read(&buf, domain.NewGraph()))

			for _, seen := range [][]float64{writes, reads} {
				require.NotEmpty(t, seen)
				assert.IsNonDecreasing(t, seen)
				assert.Equal(t, 1.0, seen[len(seen)-1])
			}
		})
	}
}

func TestMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		codec *Codec
		input string
	}{
		{"json syntax", New("json", NewJSONCodec()), `{"nodes": [`},
		{"json unknown field", New("json", NewJSONCodec()), `{"vertices": []}`},
		{"json future version", New("json", NewJSONCodec()), `{"version": 99, "nodes": [], "edges": []}`},
		{"json dangling edge", New("json", NewJSONCodec()), `{"nodes": [{"id":"a"}], "edges": [{"from":"a","to":"b"}]}`},
		{"yaml syntax", New("yaml", NewYAMLCodec()), "nodes: [\n"},
		{"yaml empty", New("yaml", NewYAMLCodec()), ""},
		{"msgpack garbage", New("msgpack", NewMsgPackCodec()), "\xc1\xc1\xc1"},
		{"binary bad magic", New("binary", NewBinaryCodec()), "XYZ\x01\x00\x00"},
		{"binary short header", New("binary", NewBinaryCodec()), "GI"},
		{"binary future version", New("binary", NewBinaryCodec()), "GIO\x09\x00\x00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.codec.Read(strings.NewReader(tt.input), domain.NewGraph())

			var decErr *DecodeError
			require.ErrorAs(t, err, &decErr)
		})
	}
}

func TestBinaryDetectsTruncation(t *testing.T) {
	c := New("binary", NewBinaryCodec())

	var buf bytes.Buffer
	require.NoError(t, c.Write(sampleGraph(t, 10), &buf))
	full := buf.Bytes()

	for _, cut := range []int{len(full) - 1, len(full) / 2, 8} {
		err := c.Read(bytes.NewReader(full[:cut]), domain.NewGraph())
		assert.ErrorIs(t, err, ErrTruncated, "cut at %d", cut)
	}
}

func TestBinaryRejectsTrailingRecords(t *testing.T) {
	c := New("binary", NewBinaryCodec())

	var first, second bytes.Buffer
	require.NoError(t, c.Write(sampleGraph(t, 2), &first))
	require.NoError(t, c.Write(sampleGraph(t, 2), &second))

	// Records of a second stream appended after the first one's declared content.
	joined := append(first.Bytes(), second.Bytes()[6:]...)
	err := c.Read(bytes.NewReader(joined), domain.NewGraph())

	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
}

func TestDOTOutput(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddNode(domain.Node{ID: "a", Label: "Alpha \"one\""}))
	require.NoError(t, g.AddNode(domain.Node{ID: "b", Type: "db"}))
	require.NoError(t, g.AddEdge(domain.Edge{ID: "e1", From: "a", To: "b", Type: "reads", Weight: 1.5}))

	var buf bytes.Buffer
	require.NoError(t, New("dot", NewDOTCodec()).Write(g, &buf))

	assert.Equal(t, `digraph "G" {
  "a" ["label"="Alpha \"one\""];
  "b" ["type"="db"];
  "a" -> "b" ["label"="reads", "weight"="1.5"];
}
`, buf.String())
}

func TestInventoryImport(t *testing.T) {
	input := `
all:
  vars:
    env: prod
  hosts:
    bastion:
      ansible_host: 10.0.0.1
  children:
    web:
      hosts:
        web1:
          ansible_host: 10.0.1.1
          port: 8080
        web2:
    db:
      hosts:
        db1:
        web1:
`
	c := New("inventory", NewInventoryCodec())
	g := domain.NewGraph()
	require.NoError(t, c.Read(strings.NewReader(input), g))

	all, ok := g.Node("all")
	require.True(t, ok)
	assert.Equal(t, InventoryGroup, all.Type)
	assert.Equal(t, "prod", all.Attributes["env"])

	web1, ok := g.Node("web1")
	require.True(t, ok)
	assert.Equal(t, InventoryHost, web1.Type)
	assert.Equal(t, "10.0.1.1", web1.Attributes["address"])
	assert.Equal(t, "8080", web1.Attributes["port"])

	// all, web, db + bastion, web1, web2, db1
	assert.Equal(t, 7, g.NodeCount())
	assert.Equal(t, []string{"bastion", "db", "web"}, g.Successors("all"))
	assert.Len(t, g.InEdges("web1"), 2, "web1 belongs to web and db")
}

func TestInventoryTopLevelGroups(t *testing.T) {
	input := `
routers:
  hosts:
    r1:
`
	g := domain.NewGraph()
	require.NoError(t, New("inventory", NewInventoryCodec()).Read(strings.NewReader(input), g))

	assert.Equal(t, []string{"routers"}, g.Successors("all"))
	assert.Equal(t, []string{"r1"}, g.Successors("routers"))
}

func TestInventoryRejectsHostNamedLikeGroup(t *testing.T) {
	input := `
all:
  children:
    web:
      hosts:
        all:
`
	err := New("inventory", NewInventoryCodec()).Read(strings.NewReader(input), domain.NewGraph())
	assert.ErrorIs(t, err, domain.ErrDuplicateNode)
}
