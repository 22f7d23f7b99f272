package codec

import (
	"bufio"
	"fmt"
	"os"

	"graphio/internal/domain"
)

// WriteFile encodes g into the file at path, truncating it. The file is
// closed on every exit path. If the file can't be opened the failure is
// logged and returned as *OpenError; encoding failures are *EncodeError.
func (c *Codec) WriteFile(g domain.View, path string) (err error) {
	if !c.CanWrite() {
		return fmt.Errorf("%s: write %s: %w", c.format, path, ErrUnsupported)
	}
	if g == nil {
		return &EncodeError{Format: c.format, Err: ErrNilGraph}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		c.logger.Printf("codec %s: can't open output stream %s: %v", c.format, path, err)
		return &OpenError{Op: "output", Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &EncodeError{Format: c.format, Err: fmt.Errorf("close %s: %w", path, cerr)}
		}
	}()

	bw := bufio.NewWriter(f)
	if err := c.Write(g, bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return &EncodeError{Format: c.format, Err: fmt.Errorf("flush %s: %w", path, err)}
	}
	return nil
}

// ReadFile decodes the file at path into g. The file is closed on every
// exit path. If the file can't be opened the failure is logged and
// returned as *OpenError; decoding failures are *DecodeError.
func (c *Codec) ReadFile(path string, g domain.Builder) error {
	if !c.CanRead() {
		return fmt.Errorf("%s: read %s: %w", c.format, path, ErrUnsupported)
	}
	if g == nil {
		return &DecodeError{Format: c.format, Err: ErrNilGraph}
	}

	f, err := os.Open(path)
	if err != nil {
		c.logger.Printf("codec %s: can't open input stream %s: %v", c.format, path, err)
		return &OpenError{Op: "input", Path: path, Err: err}
	}
	defer f.Close()

	return c.Read(bufio.NewReader(f), g)
}
