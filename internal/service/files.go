package service

import (
	"fmt"

	"graphio/internal/codec"
	"graphio/internal/domain"
	"graphio/internal/progress"
)

// File names a graph file. An empty Format is chosen from the extension.
type File struct {
	Path   string
	Format string
}

func (f File) String() string {
	if f.Format == "" {
		return f.Path
	}
	return fmt.Sprintf("%s (%s)", f.Path, f.Format)
}

func (s *GraphService) fileCodec(f File, n progress.Notifier) (*codec.Codec, error) {
	if f.Format != "" {
		return s.plain.Get(f.Format, codec.WithNotifier(n))
	}
	return s.plain.ForPath(f.Path, codec.WithNotifier(n))
}

// ReadFile decodes f into g
func (s *GraphService) ReadFile(f File, g domain.Builder) error {
	c, err := s.fileCodec(f, s.progress("read "+f.Path))
	if err != nil {
		return err
	}
	defer c.Close()
	return c.ReadFile(f.Path, g)
}

// WriteFile encodes g into f
func (s *GraphService) WriteFile(g domain.View, f File) error {
	c, err := s.fileCodec(f, s.progress("write "+f.Path))
	if err != nil {
		return err
	}
	defer c.Close()
	return c.WriteFile(g, f.Path)
}

// Convert reads src and writes the same graph to dst. Both codecs are
// resolved before anything is read, so an unsupported direction fails
// without touching dst.
func (s *GraphService) Convert(src, dst File) (*domain.Graph, error) {
	phased := progress.NewPhased(s.progress("convert "+src.Path), 2)

	in, err := s.fileCodec(src, phased)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	out, err := s.fileCodec(dst, phased)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	if !in.CanRead() {
		return nil, fmt.Errorf("%s: read: %w", in.Format(), codec.ErrUnsupported)
	}
	if !out.CanWrite() {
		return nil, fmt.Errorf("%s: write: %w", out.Format(), codec.ErrUnsupported)
	}

	g := domain.NewGraph()
	if err := in.ReadFile(src.Path, g); err != nil {
		return nil, err
	}
	if err := out.WriteFile(g, dst.Path); err != nil {
		return nil, err
	}

	s.logger.Printf("Converted %s to %s (%d nodes, %d edges)", src, dst, g.NodeCount(), g.EdgeCount())
	return g, nil
}

// FormatInfo describes one registered format
type FormatInfo struct {
	Name     string
	CanRead  bool
	CanWrite bool
}

// Formats lists the registered formats and their capabilities
func (s *GraphService) Formats() []FormatInfo {
	var infos []FormatInfo
	for _, name := range s.plain.Formats() {
		c, err := s.plain.Get(name)
		if err != nil {
			continue
		}
		infos = append(infos, FormatInfo{Name: name, CanRead: c.CanRead(), CanWrite: c.CanWrite()})
	}
	return infos
}
