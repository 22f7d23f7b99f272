// Package codec converts graphs to and from external representations.
//
// A concrete format provides a write capability (Writer), a read
// capability (Reader) or both. Codec composes whichever capabilities a
// format has with the shared infrastructure every format needs:
//
//   - ownership of a progress.Notifier, which is never nil,
//   - stream operations (Write, Read) that tag failures as *EncodeError or
//     *DecodeError,
//   - file operations (WriteFile, ReadFile) that release the file on every
//     exit path and report open failures separately as *OpenError.
//
// A direction the format does not implement returns ErrUnsupported. The
// Nop implementation is the explicit "nothing to do" codec.
//
// After a failed Read the target graph is indeterminate and must be reset
// before reuse. After a failed Write the destination holds an incomplete
// representation. Nothing in this package retries.
//
// # Formats
//
//	json       bidirectional
//	yaml       bidirectional
//	msgpack    bidirectional, binary
//	binary     bidirectional, protobuf wire records
//	dot        write-only, Graphviz
//	inventory  read-only, Ansible YAML inventory
package codec
