package envelope

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/chacha20poly1305"
)

// GenerateKey returns a random sealing key
func GenerateKey() ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

// LoadKey reads a sealing key file holding either the raw 32 bytes or
// their hex encoding
func LoadKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key: %w", err)
	}

	if len(data) == chacha20poly1305.KeySize {
		return data, nil
	}

	trimmed := bytes.TrimSpace(data)
	key := make([]byte, hex.DecodedLen(len(trimmed)))
	if _, err := hex.Decode(key, trimmed); err != nil {
		return nil, fmt.Errorf("decode key %s: %w", path, err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrBadKey
	}
	return key, nil
}
