// Package filearray exposes an on-disk file as a mutable, randomly
// addressable sequence of bytes.
//
// An Array supports single-byte Get/Set, contiguous GetRange/SetRange, and
// the io.ReaderAt and io.WriterAt interfaces. Reads and writes go through a
// cache.Strategy that keeps repeated accesses off the disk:
//   - block strategy (Open, OpenBlocks): caches whole fixed-size blocks and
//     writes each patched block back in full
//   - byte strategy (OpenBytes): caches single bytes up to a bound and evicts
//     in insertion order
//
// Requests can also be expressed as a Key, either an Offset or a Range, and
// passed to Load and Store. Only unit-stride ranges are supported.
//
// The underlying file is opened and closed for every I/O call. The file must
// already exist and be long enough for every addressed offset; an Array never
// extends it. Writes made by other processes or other Arrays over the same
// file are not detected. An Array is not safe for concurrent use.
package filearray
