// Package envelope decorates codec implementations with compression and
// authenticated encryption. An enveloped stream is self-describing: readers
// detect the compression from the header and only need the key when the
// payload is sealed.
//
// Stream layout:
//
//	"GENV" | flags | payload
//
// flags holds the compression id in the low nibble and 0x80 when the
// payload is sealed. A sealed payload is nonce || ciphertext, with the
// five header bytes bound as additional data.
package envelope

import (
	"bytes"
	"compress/gzip"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"graphio/internal/codec"
	"graphio/internal/domain"
	"graphio/internal/progress"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/chacha20poly1305"
)

// Compression selects the compression algorithm
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

const (
	flagSealed   byte = 0x80
	compressMask byte = 0x0f
)

var magic = []byte("GENV")

var (
	// ErrNotEnveloped is returned when a stream lacks the envelope header.
	ErrNotEnveloped = errors.New("stream is not enveloped")

	// ErrKeyRequired is returned when reading a sealed stream without a key.
	ErrKeyRequired = errors.New("sealed stream requires a key")

	// ErrBadKey is returned for keys that are not chacha20poly1305.KeySize bytes.
	ErrBadKey = errors.New("sealing key must be 32 bytes")
)

// ParseCompression parses a compression name. Empty means none.
func ParseCompression(s string) (Compression, error) {
	switch Compression(s) {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionGzip, CompressionZstd:
		return Compression(s), nil
	default:
		return "", fmt.Errorf("unknown compression %q", s)
	}
}

func (c Compression) id() byte {
	switch c {
	case CompressionGzip:
		return 1
	case CompressionZstd:
		return 2
	default:
		return 0
	}
}

func compressionFromID(id byte) (Compression, error) {
	switch id {
	case 0:
		return CompressionNone, nil
	case 1:
		return CompressionGzip, nil
	case 2:
		return CompressionZstd, nil
	default:
		return "", fmt.Errorf("unknown compression id %d", id)
	}
}

// Options configures an Envelope
type Options struct {
	Compression Compression
	// Key seals written payloads and opens sealed ones when set.
	Key []byte
}

// Envelope holds validated options and decorates codec implementations
type Envelope struct {
	compression Compression
	aead        cipher.AEAD
}

// New validates opts and creates an Envelope
func New(opts Options) (*Envelope, error) {
	compression, err := ParseCompression(string(opts.Compression))
	if err != nil {
		return nil, err
	}

	e := &Envelope{compression: compression}
	if len(opts.Key) > 0 {
		if len(opts.Key) != chacha20poly1305.KeySize {
			return nil, ErrBadKey
		}
		aead, err := chacha20poly1305.NewX(opts.Key)
		if err != nil {
			return nil, fmt.Errorf("init cipher: %w", err)
		}
		e.aead = aead
	}
	return e, nil
}

// Sealed reports whether written payloads are encrypted
func (e *Envelope) Sealed() bool {
	return e.aead != nil
}

// Decorate wraps impl keeping exactly its capabilities: a write-only
// implementation stays write-only and a read-only one stays read-only.
// It has the codec.Decorator signature.
func (e *Envelope) Decorate(impl any) any {
	w, canWrite := impl.(codec.Writer)
	r, canRead := impl.(codec.Reader)

	switch {
	case canWrite && canRead:
		return &readWriter{writer: writer{e, w}, reader: reader{e, r}}
	case canWrite:
		return &writer{e, w}
	case canRead:
		return &reader{e, r}
	default:
		return impl
	}
}

type writer struct {
	env   *Envelope
	inner codec.Writer
}

func (w *writer) Write(g domain.View, dst io.Writer, n progress.Notifier) error {
	return w.env.write(w.inner, g, dst, n)
}

type reader struct {
	env   *Envelope
	inner codec.Reader
}

func (r *reader) Read(src io.Reader, g domain.Builder, n progress.Notifier) error {
	return r.env.read(r.inner, src, g, n)
}

type readWriter struct {
	writer
	reader
}

func (e *Envelope) header() []byte {
	flags := e.compression.id()
	if e.aead != nil {
		flags |= flagSealed
	}
	return append(append([]byte(nil), magic...), flags)
}

func (e *Envelope) write(inner codec.Writer, g domain.View, dst io.Writer, n progress.Notifier) error {
	header := e.header()
	if _, err := dst.Write(header); err != nil {
		return fmt.Errorf("write envelope header: %w", err)
	}

	sink := dst
	var plain *bytes.Buffer
	if e.aead != nil {
		plain = &bytes.Buffer{}
		sink = plain
	}

	cw, err := compressor(e.compression, sink)
	if err != nil {
		return err
	}
	if err := inner.Write(g, cw, n); err != nil {
		cw.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("finish %s stream: %w", e.compression, err)
	}

	if plain == nil {
		return nil
	}

	nonce := make([]byte, e.aead.NonceSize(), e.aead.NonceSize()+plain.Len()+e.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	sealed := e.aead.Seal(nonce, nonce, plain.Bytes(), header)
	if _, err := dst.Write(sealed); err != nil {
		return fmt.Errorf("write sealed payload: %w", err)
	}
	return nil
}

func (e *Envelope) read(inner codec.Reader, src io.Reader, g domain.Builder, n progress.Notifier) error {
	header := make([]byte, len(magic)+1)
	if _, err := io.ReadFull(src, header); err != nil {
		return fmt.Errorf("read envelope header: %w", err)
	}
	if !bytes.Equal(header[:len(magic)], magic) {
		return ErrNotEnveloped
	}
	flags := header[len(magic)]
	compression, err := compressionFromID(flags & compressMask)
	if err != nil {
		return err
	}

	payload := src
	if flags&flagSealed != 0 {
		if e.aead == nil {
			return ErrKeyRequired
		}
		data, err := io.ReadAll(src)
		if err != nil {
			return fmt.Errorf("read sealed payload: %w", err)
		}
		if len(data) < e.aead.NonceSize() {
			return fmt.Errorf("%w: sealed payload too short", codec.ErrTruncated)
		}
		nonce, ciphertext := data[:e.aead.NonceSize()], data[e.aead.NonceSize():]
		plain, err := e.aead.Open(nil, nonce, ciphertext, header)
		if err != nil {
			return fmt.Errorf("open sealed payload: %w", err)
		}
		payload = bytes.NewReader(plain)
	}

	dr, err := decompressor(compression, payload)
	if err != nil {
		return err
	}
	defer dr.Close()

	return inner.Read(dr, g, n)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func compressor(c Compression, w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("init zstd: %w", err)
		}
		return enc, nil
	default:
		return nopWriteCloser{w}, nil
	}
}

func decompressor(c Compression, r io.Reader) (io.ReadCloser, error) {
	switch c {
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		return zr, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		return dec.IOReadCloser(), nil
	default:
		return io.NopCloser(r), nil
	}
}
