// Package repository defines snapshot persistence for graphio.
//
// A snapshot is an encoded graph plus the metadata needed to decode it
// again: the codec format and the envelope applied on top. Stores never
// look inside Data.
//
// The sqlite subpackage provides the implementation. It migrates its
// schema on open and is tested against in-memory databases.
package repository
