package codec

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Factory builds a fresh codec implementation. The returned value must
// implement Writer, Reader or both.
type Factory func() any

// Decorator wraps a codec implementation, for example to add compression.
type Decorator func(impl any) any

// Registry maps format names and file extensions to codec factories.
// Get hands out a new Codec per call, so codecs from one Registry can be
// used from different goroutines.
type Registry struct {
	mu         sync.RWMutex
	factories  map[string]Factory
	extensions map[string]string
	decorator  Decorator
	opts       []Option
}

// NewRegistry creates an empty registry. opts are applied to every Codec
// it builds.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		factories:  make(map[string]Factory),
		extensions: make(map[string]string),
		opts:       opts,
	}
}

// DefaultRegistry creates a registry with every built-in format
func DefaultRegistry(opts ...Option) *Registry {
	r := NewRegistry(opts...)
	r.Register("json", func() any { return NewJSONCodec() }, ".json")
	r.Register("yaml", func() any { return NewYAMLCodec() }, ".yaml", ".yml")
	r.Register("msgpack", func() any { return NewMsgPackCodec() }, ".msgpack", ".mp")
	r.Register("binary", func() any { return NewBinaryCodec() }, ".gio", ".bin")
	r.Register("dot", func() any { return NewDOTCodec() }, ".dot", ".gv")
	r.Register("inventory", func() any { return NewInventoryCodec() })
	return r
}

// Register adds or replaces a format and the file extensions mapped to it
func (r *Registry) Register(format string, factory Factory, extensions ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[format] = factory
	for _, ext := range extensions {
		r.extensions[strings.ToLower(ext)] = format
	}
}

// SetDecorator installs a decorator applied to every implementation built
// afterwards. nil removes it.
func (r *Registry) SetDecorator(d Decorator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decorator = d
}

// Get builds a codec for format
func (r *Registry) Get(format string, opts ...Option) (*Codec, error) {
	r.mu.RLock()
	factory, ok := r.factories[format]
	decorator := r.decorator
	base := r.opts
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	impl := factory()
	if decorator != nil {
		impl = decorator(impl)
	}

	all := make([]Option, 0, len(base)+len(opts))
	all = append(all, base...)
	all = append(all, opts...)
	return New(format, impl, all...), nil
}

// FormatForPath returns the format registered for the extension of path
func (r *Registry) FormatForPath(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	r.mu.RLock()
	format, ok := r.extensions[ext]
	r.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: no format for extension %q", ErrUnknownFormat, ext)
	}
	return format, nil
}

// ForPath builds a codec chosen by the extension of path
func (r *Registry) ForPath(path string, opts ...Option) (*Codec, error) {
	format, err := r.FormatForPath(path)
	if err != nil {
		return nil, err
	}
	return r.Get(format, opts...)
}

// Formats returns the registered format names, sorted
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]string, 0, len(r.factories))
	for format := range r.factories {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}
