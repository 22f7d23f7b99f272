package envelope

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"graphio/internal/codec"
	"graphio/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGraph(t *testing.T) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	for _, id := range []string{"a", "b", "c", "d"} {
		node := domain.NewNode(id, "svc", strings.Repeat(id, 40))
		node.SetAttribute("owner", "team-"+id)
		require.NoError(t, g.AddNode(*node))
	}
	require.NoError(t, g.AddEdge(*domain.NewEdge("a", "b", "calls")))
	require.NoError(t, g.AddEdge(*domain.NewEdge("b", "c", "calls")))
	require.NoError(t, g.AddEdge(*domain.NewEdge("c", "d", "calls")))
	return g
}

func mustKey(t *testing.T) []byte {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	return key
}

func TestRoundTrip(t *testing.T) {
	key := mustKey(t)
	tests := []struct {
		name string
		opts Options
	}{
		{"plain", Options{}},
		{"gzip", Options{Compression: CompressionGzip}},
		{"zstd", Options{Compression: CompressionZstd}},
		{"sealed", Options{Key: key}},
		{"gzip sealed", Options{Compression: CompressionGzip, Key: key}},
		{"zstd sealed", Options{Compression: CompressionZstd, Key: key}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := New(tt.opts)
			require.NoError(t, err)
			c := codec.New("json", env.Decorate(codec.NewJSONCodec()))

			g := testGraph(t)
			var buf bytes.Buffer
			require.NoError(t, c.Write(g, &buf))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("GENV")))

			decoded := domain.NewGraph()
			require.NoError(t, c.Read(&buf, decoded))
			assert.True(t, domain.Equal(g, decoded))
		})
	}
}

func TestCompressionShrinksRepetitiveGraphs(t *testing.T) {
	plain, err := New(Options{})
	require.NoError(t, err)
	zstdEnv, err := New(Options{Compression: CompressionZstd})
	require.NoError(t, err)

	g := testGraph(t)
	var a, b bytes.Buffer
	require.NoError(t, codec.New("json", plain.Decorate(codec.NewJSONCodec())).Write(g, &a))
	require.NoError(t, codec.New("json", zstdEnv.Decorate(codec.NewJSONCodec())).Write(g, &b))

	assert.Less(t, b.Len(), a.Len())
}

func TestSealedStreams(t *testing.T) {
	sealer, err := New(Options{Key: mustKey(t)})
	require.NoError(t, err)
	assert.True(t, sealer.Sealed())

	var buf bytes.Buffer
	require.NoError(t, codec.New("binary", sealer.Decorate(codec.NewBinaryCodec())).Write(testGraph(t), &buf))
	sealed := buf.Bytes()

	t.Run("missing key", func(t *testing.T) {
		open, err := New(Options{})
		require.NoError(t, err)
		err = codec.New("binary", open.Decorate(codec.NewBinaryCodec())).Read(bytes.NewReader(sealed), domain.NewGraph())
		assert.ErrorIs(t, err, ErrKeyRequired)
	})

	t.Run("wrong key", func(t *testing.T) {
		other, err := New(Options{Key: mustKey(t)})
		require.NoError(t, err)
		err = codec.New("binary", other.Decorate(codec.NewBinaryCodec())).Read(bytes.NewReader(sealed), domain.NewGraph())

		var decErr *codec.DecodeError
		require.ErrorAs(t, err, &decErr)
	})

	t.Run("tampered header", func(t *testing.T) {
		tampered := append([]byte(nil), sealed...)
		tampered[4] |= 0x01 // claim gzip
		err := codec.New("binary", sealer.Decorate(codec.NewBinaryCodec())).Read(bytes.NewReader(tampered), domain.NewGraph())
		assert.Error(t, err)
	})

	t.Run("too short", func(t *testing.T) {
		err := codec.New("binary", sealer.Decorate(codec.NewBinaryCodec())).Read(bytes.NewReader(sealed[:10]), domain.NewGraph())
		assert.ErrorIs(t, err, codec.ErrTruncated)
	})
}

func TestReadRejectsPlainStreams(t *testing.T) {
	env, err := New(Options{})
	require.NoError(t, err)

	err = codec.New("json", env.Decorate(codec.NewJSONCodec())).Read(strings.NewReader(`{"nodes":[],"edges":[]}`), domain.NewGraph())
	assert.ErrorIs(t, err, ErrNotEnveloped)
}

func TestDecoratePreservesCapabilities(t *testing.T) {
	env, err := New(Options{Compression: CompressionGzip})
	require.NoError(t, err)

	dot := codec.New("dot", env.Decorate(codec.NewDOTCodec()))
	assert.True(t, dot.CanWrite())
	assert.False(t, dot.CanRead())

	inv := codec.New("inventory", env.Decorate(codec.NewInventoryCodec()))
	assert.False(t, inv.CanWrite())
	assert.True(t, inv.CanRead())

	json := codec.New("json", env.Decorate(codec.NewJSONCodec()))
	assert.True(t, json.CanWrite())
	assert.True(t, json.CanRead())

	assert.Equal(t, "untouched", env.Decorate("untouched"))
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(Options{Compression: "lz4"})
	assert.Error(t, err)

	_, err = New(Options{Key: []byte("short")})
	assert.ErrorIs(t, err, ErrBadKey)
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		input string
		want  Compression
		ok    bool
	}{
		{"", CompressionNone, true},
		{"none", CompressionNone, true},
		{"gzip", CompressionGzip, true},
		{"zstd", CompressionZstd, true},
		{"brotli", "", false},
	}

	for _, tt := range tests {
		got, err := ParseCompression(tt.input)
		if tt.ok {
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		} else {
			assert.Error(t, err)
		}
	}
}

func TestLoadKey(t *testing.T) {
	dir := t.TempDir()
	key := mustKey(t)

	raw := filepath.Join(dir, "raw.key")
	require.NoError(t, os.WriteFile(raw, key, 0600))
	got, err := LoadKey(raw)
	require.NoError(t, err)
	assert.Equal(t, key, got)

	hexPath := filepath.Join(dir, "hex.key")
	require.NoError(t, os.WriteFile(hexPath, []byte(hex.EncodeToString(key)+"\n"), 0600))
	got, err = LoadKey(hexPath)
	require.NoError(t, err)
	assert.Equal(t, key, got)

	bad := filepath.Join(dir, "bad.key")
	require.NoError(t, os.WriteFile(bad, []byte("abcd"), 0600))
	_, err = LoadKey(bad)
	assert.ErrorIs(t, err, ErrBadKey)

	_, err = LoadKey(filepath.Join(dir, "missing.key"))
	assert.Error(t, err)
}
