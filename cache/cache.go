package cache

import (
	"context"
	"errors"
)

// DefaultBlockSize is the default block size used by the block strategy.
const DefaultBlockSize int64 = 512 << 10

// DefaultCacheSize is the default number of bytes held by the byte strategy.
const DefaultCacheSize = 1024

// DefaultWarmConcurrency is the default number of concurrent block reads
// used when warming the block strategy.
const DefaultWarmConcurrency = 4

var (
	// ErrOutOfRange is returned when an offset lies outside the tracked file length.
	ErrOutOfRange = errors.New("filearray: offset out of range")

	// ErrInvalidBlockSize is returned when a block size is not positive.
	ErrInvalidBlockSize = errors.New("filearray: block size must be > 0")

	// ErrInvalidCacheSize is returned when a cache size is not positive.
	ErrInvalidCacheSize = errors.New("filearray: cache size must be > 0")
)

// Strategy caches reads and writes against a single file.
//
// Offsets passed to a Strategy have already been validated against the key
// shape by the caller; a Strategy only enforces its own length bound.
// Implementations are not safe for concurrent use.
type Strategy interface {
	// Get returns the byte at off.
	Get(off int64) (byte, error)

	// Set writes b at off, keeping cache and file consistent.
	Set(off int64, b byte) error

	// GetRange returns the bytes in [start, stop).
	GetRange(start, stop int64) ([]byte, error)

	// SetRange writes data starting at start. A failure partway through may
	// leave a prefix of data written.
	SetRange(start int64, data []byte) error

	// Len returns the tracked file length, or false if the strategy does
	// not track one.
	Len() (int64, bool)

	// Stats returns a snapshot of cache counters.
	Stats() Stats

	// Reset drops every cached entry without touching the file.
	Reset()
}

// Warmer is implemented by strategies that can preload the cache for a range.
type Warmer interface {
	// Warm loads the cache entries covering [start, stop) and returns how
	// many entries were loaded.
	Warm(ctx context.Context, start, stop int64) (int, error)
}

// Stats holds cache counters for a Strategy.
type Stats struct {
	Hits      uint64 // lookups served from the cache
	Misses    uint64 // lookups that required file I/O
	Evictions uint64 // entries removed to stay within the bound
	Entries   int    // entries currently cached (blocks or bytes)
}
