package domain

import "errors"

// Sentinel errors for graph mutation.
var (
	// ErrEmptyID is returned when a node ID or an edge endpoint is empty.
	ErrEmptyID = errors.New("empty node ID")

	// ErrDuplicateNode is returned when adding a node whose ID already exists.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrNodeNotFound is returned when an edge references a missing node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicateEdge is returned when adding an edge whose ID already exists.
	ErrDuplicateEdge = errors.New("duplicate edge ID")
)
