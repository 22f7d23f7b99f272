package codec

import (
	"io"

	"graphio/internal/domain"
	"graphio/internal/progress"
)

// Nop is a codec implementation with both capabilities that does nothing:
// Write emits no bytes and Read consumes none, and both succeed.
// It stands for "nothing to do", unlike a missing capability which is
// reported as ErrUnsupported.
type Nop struct{}

func (Nop) Write(domain.View, io.Writer, progress.Notifier) error {
	return nil
}

func (Nop) Read(io.Reader, domain.Builder, progress.Notifier) error {
	return nil
}
