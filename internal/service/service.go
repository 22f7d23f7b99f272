package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"graphio/internal/codec"
	"graphio/internal/domain"
	"graphio/internal/envelope"
	"graphio/internal/progress"
	"graphio/internal/repository"
)

// ErrNoStore is returned by snapshot workflows of a service built without a store
var ErrNoStore = errors.New("no snapshot store configured")

// NotifierFactory builds the progress notifier for one workflow
type NotifierFactory func(label string) progress.Notifier

// Options configures a GraphService
type Options struct {
	// Format is the codec used for new snapshots
	Format   string
	Envelope envelope.Options
	Logger   *log.Logger
	// Progress is called once per workflow; nil reports nothing
	Progress NotifierFactory
}

// GraphService provides snapshot and conversion workflows
type GraphService struct {
	store    repository.SnapshotStore
	plain    *codec.Registry
	wrapped  *codec.Registry
	format   string
	envLabel string
	logger   *log.Logger
	progress NotifierFactory
}

// NewGraphService creates a new graph service. store may be nil when only
// the file workflows are used.
func NewGraphService(store repository.SnapshotStore, opts Options) (*GraphService, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Progress == nil {
		opts.Progress = func(string) progress.Notifier { return progress.Nop{} }
	}

	env, err := envelope.New(opts.Envelope)
	if err != nil {
		return nil, fmt.Errorf("configure envelope: %w", err)
	}

	s := &GraphService{
		store:    store,
		plain:    codec.DefaultRegistry(codec.WithLogger(opts.Logger)),
		wrapped:  codec.DefaultRegistry(codec.WithLogger(opts.Logger)),
		format:   opts.Format,
		envLabel: envelopeLabel(opts.Envelope.Compression, env.Sealed()),
		logger:   opts.Logger,
		progress: opts.Progress,
	}
	s.wrapped.SetDecorator(env.Decorate)

	if s.format == "" {
		s.format = "binary"
	}
	c, err := s.plain.Get(s.format)
	if err != nil {
		return nil, err
	}
	if !c.CanWrite() || !c.CanRead() {
		return nil, fmt.Errorf("snapshot format %s must be readable and writable", s.format)
	}

	return s, nil
}

// envelopeLabel describes the envelope recorded with each snapshot. Empty
// means snapshots are stored as the bare codec output.
func envelopeLabel(compression envelope.Compression, sealed bool) string {
	label := ""
	if compression != "" && compression != envelope.CompressionNone {
		label = string(compression)
	}
	if sealed {
		if label == "" {
			return "sealed"
		}
		label += "+sealed"
	}
	return label
}

// Registry returns the registry used for plain files
func (s *GraphService) Registry() *codec.Registry {
	return s.plain
}

func (s *GraphService) snapshotCodec(format, envLabel string, n progress.Notifier) (*codec.Codec, error) {
	registry := s.plain
	if envLabel != "" {
		registry = s.wrapped
	}
	return registry.Get(format, codec.WithNotifier(n))
}

// Save encodes g and stores it as the newest snapshot of name
func (s *GraphService) Save(ctx context.Context, name string, g domain.View) (*repository.Snapshot, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	phased := progress.NewPhased(s.progress("save "+name), 2)

	c, err := s.snapshotCodec(s.format, s.envLabel, phased)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	var buf bytes.Buffer
	if err := c.Write(g, &buf); err != nil {
		return nil, err
	}

	snap := &repository.Snapshot{
		Name:      name,
		Format:    s.format,
		Envelope:  s.envLabel,
		NodeCount: g.NodeCount(),
		EdgeCount: g.EdgeCount(),
		Data:      buf.Bytes(),
	}

	phased.Begin()
	err = s.store.Save(ctx, snap)
	phased.End()
	if err != nil {
		return nil, fmt.Errorf("store snapshot %s: %w", name, err)
	}

	s.logger.Printf("Saved snapshot %s of %s (%s, %d nodes, %d edges, %d bytes)",
		snap.ID, name, s.format, snap.NodeCount, snap.EdgeCount, len(snap.Data))
	return snap, nil
}

// Load decodes the newest snapshot of name into g. On a decode error g is
// left partially populated.
func (s *GraphService) Load(ctx context.Context, name string, g domain.Builder) (*repository.Snapshot, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	phased := progress.NewPhased(s.progress("load "+name), 2)

	phased.Begin()
	snap, err := s.store.Latest(ctx, name)
	phased.End()
	if err != nil {
		return nil, err
	}

	return snap, s.decode(snap, g, phased)
}

// LoadID decodes the snapshot with the given ID into g
func (s *GraphService) LoadID(ctx context.Context, id string, g domain.Builder) (*repository.Snapshot, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	phased := progress.NewPhased(s.progress("load "+id), 2)

	phased.Begin()
	snap, err := s.store.Get(ctx, id)
	phased.End()
	if err != nil {
		return nil, err
	}

	return snap, s.decode(snap, g, phased)
}

func (s *GraphService) decode(snap *repository.Snapshot, g domain.Builder, n progress.Notifier) error {
	c, err := s.snapshotCodec(snap.Format, snap.Envelope, n)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", snap.ID, err)
	}
	defer c.Close()

	if err := c.Read(bytes.NewReader(snap.Data), g); err != nil {
		return fmt.Errorf("snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// List returns snapshot metadata, newest first. An empty name lists all.
func (s *GraphService) List(ctx context.Context, name string) ([]*repository.Snapshot, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.List(ctx, name)
}

// Delete removes one snapshot
func (s *GraphService) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return ErrNoStore
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Printf("Deleted snapshot %s", id)
	return nil
}
