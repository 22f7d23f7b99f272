package codec

import (
	"fmt"
	"io"
	"log"

	"graphio/internal/domain"
	"graphio/internal/progress"
)

// Writer is the write capability: it encodes a read-only graph onto w.
// n is never nil and may receive progress reports at the writer's discretion.
type Writer interface {
	Write(g domain.View, w io.Writer, n progress.Notifier) error
}

// Reader is the read capability: it decodes r into g.
// On error g may hold a partial graph and must not be reused without a reset.
type Reader interface {
	Read(r io.Reader, g domain.Builder, n progress.Notifier) error
}

// Codec composes an optional Writer and an optional Reader for one format,
// owns the progress notifier handed to them and reports I/O problems to a
// diagnostic logger.
//
// A Codec is not safe for concurrent use. Use one Codec per goroutine.
type Codec struct {
	format   string
	writer   Writer
	reader   Reader
	notifier progress.Notifier
	logger   *log.Logger
}

// Option configures a Codec
type Option func(*Codec)

// WithLogger sets the diagnostic logger used for open failures
func WithLogger(logger *log.Logger) Option {
	return func(c *Codec) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNotifier registers n at construction time
func WithNotifier(n progress.Notifier) Option {
	return func(c *Codec) {
		c.RegisterNotifier(n)
	}
}

// New creates a codec for format around impl. impl may implement Writer,
// Reader or both; a missing direction makes that direction return
// ErrUnsupported.
func New(format string, impl any, opts ...Option) *Codec {
	c := &Codec{
		format:   format,
		notifier: progress.Nop{},
		logger:   log.Default(),
	}
	if w, ok := impl.(Writer); ok {
		c.writer = w
	}
	if r, ok := impl.(Reader); ok {
		c.reader = r
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Format returns the codec format identifier
func (c *Codec) Format() string {
	return c.format
}

// CanWrite reports whether the codec has a write capability
func (c *Codec) CanWrite() bool {
	return c.writer != nil
}

// CanRead reports whether the codec has a read capability
func (c *Codec) CanRead() bool {
	return c.reader != nil
}

// RegisterNotifier transfers ownership of n to the codec. The previously
// owned notifier is released (closed if it implements io.Closer).
// A nil n is ignored and the current notifier stays installed.
func (c *Codec) RegisterNotifier(n progress.Notifier) {
	if n == nil {
		return
	}
	old := c.notifier
	c.notifier = n
	c.release(old)
}

// Notifier returns the currently owned notifier. It is never nil.
func (c *Codec) Notifier() progress.Notifier {
	if c.notifier == nil {
		panic("codec: internal error: progress notifier can't be nil")
	}
	return c.notifier
}

// Close releases the owned notifier and reinstalls the no-op default
func (c *Codec) Close() error {
	old := c.notifier
	c.notifier = progress.Nop{}
	return c.release(old)
}

func (c *Codec) release(n progress.Notifier) error {
	closer, ok := n.(io.Closer)
	if !ok {
		return nil
	}
	if err := closer.Close(); err != nil {
		c.logger.Printf("codec %s: failed to release progress notifier: %v", c.format, err)
		return err
	}
	return nil
}

// Write encodes g onto w. Encoding failures are returned as *EncodeError;
// w must then be treated as holding an incomplete representation.
func (c *Codec) Write(g domain.View, w io.Writer) error {
	if c.writer == nil {
		return fmt.Errorf("%s: write: %w", c.format, ErrUnsupported)
	}
	if g == nil {
		return &EncodeError{Format: c.format, Err: ErrNilGraph}
	}

	n := c.Notifier()
	n.Begin()
	defer n.End()

	if err := c.writer.Write(g, w, n); err != nil {
		return &EncodeError{Format: c.format, Err: err}
	}
	return nil
}

// Read decodes r into g. Decoding failures are returned as *DecodeError;
// g must then be treated as invalid.
func (c *Codec) Read(r io.Reader, g domain.Builder) error {
	if c.reader == nil {
		return fmt.Errorf("%s: read: %w", c.format, ErrUnsupported)
	}
	if g == nil {
		return &DecodeError{Format: c.format, Err: ErrNilGraph}
	}

	n := c.Notifier()
	n.Begin()
	defer n.End()

	if err := c.reader.Read(r, g, n); err != nil {
		return &DecodeError{Format: c.format, Err: err}
	}
	return nil
}
