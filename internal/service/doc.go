// Package service implements the graph persistence workflows of graphio.
//
// GraphService coordinates the codec registry, the envelope and the
// snapshot store:
//
//   - Save encodes a graph with the configured format, applies the
//     envelope when one is configured and stores the bytes as a snapshot.
//   - Load fetches the newest snapshot of a name and decodes it.
//   - Convert reads a file in one format and writes it in another.
//
// Every workflow runs in phases, and each phase is one Begin/End pair on
// a progress.Phased notifier, so callers see a single 0..1 range for the
// whole workflow.
package service
