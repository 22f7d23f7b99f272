// Package domain defines the directed graph that graphio encodes and decodes.
//
// # Core Types
//
// Node is a vertex identified by a unique string ID, with an optional label,
// type and string attributes.
//
// Edge is a directed connection From one node To another, with an optional
// type, weight and string attributes. Edges without an explicit ID receive a
// deterministic one derived from their endpoints and type.
//
// Graph stores nodes and edges in insertion order and indexes adjacency in
// both directions.
//
// # Capabilities
//
// Codecs never depend on *Graph directly. Encoders observe a View and
// decoders populate a Builder, so any graph type that satisfies these
// interfaces can be serialized.
//
// # Ownership
//
// Graphs copy nodes and edges on insertion and on read. Callers own the
// graph's lifetime; codecs never retain a graph after a call returns.
package domain
