package codec

import (
	"fmt"
	"io"

	"graphio/internal/domain"
	"graphio/internal/progress"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgPackCodec handles MessagePack import/export
type MsgPackCodec struct{}

// NewMsgPackCodec creates a new MessagePack codec
func NewMsgPackCodec() *MsgPackCodec {
	return &MsgPackCodec{}
}

// Format returns the codec format identifier
func (c *MsgPackCodec) Format() string {
	return "msgpack"
}

// Read imports graph data from MessagePack
func (c *MsgPackCodec) Read(r io.Reader, g domain.Builder, n progress.Notifier) error {
	var doc document
	if err := msgpack.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("failed to parse MessagePack: %w", err)
	}

	return doc.populate(g, n)
}

// Write exports graph data to MessagePack
func (c *MsgPackCodec) Write(g domain.View, w io.Writer, n progress.Notifier) error {
	if err := msgpack.NewEncoder(w).Encode(newDocument(g, n)); err != nil {
		return fmt.Errorf("failed to encode MessagePack: %w", err)
	}

	return nil
}
