package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned when a codec lacks the requested direction.
	ErrUnsupported = errors.New("operation not supported by codec")

	// ErrNilGraph is returned when a nil graph is passed to Write or Read.
	ErrNilGraph = errors.New("nil graph")

	// ErrUnknownFormat is returned by a Registry for unregistered formats.
	ErrUnknownFormat = errors.New("unknown format")

	// ErrVersion is returned when a stream declares an unsupported version.
	ErrVersion = errors.New("unsupported format version")

	// ErrTruncated is returned when a stream ends before the declared content.
	ErrTruncated = errors.New("truncated stream")

	// ErrInvalidUTF8 is returned by text formats that can't carry a string's bytes.
	ErrInvalidUTF8 = errors.New("string is not valid UTF-8")
)

// EncodeError reports a failure while writing a graph. The destination
// holds an incomplete representation.
type EncodeError struct {
	Format string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("%s: encode: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// DecodeError reports a failure while reading a graph. The graph being
// populated is left in an indeterminate state.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// OpenError reports that a file could not be opened. Nothing was written
// to or read from it.
type OpenError struct {
	Op   string
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("can't open %s stream %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}
