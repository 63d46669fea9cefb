// Package fifo implements a filearray caching strategy that caches single
// bytes up to a fixed number of entries.
//
// Writes go to the file first and are then cached. When the cache is full,
// the entry inserted earliest is evicted, regardless of how recently it was
// read. Range reads bypass the cache entirely. The file length is not
// tracked; callers supply offsets that are valid for the file.
package fifo

import (
	"fmt"
	"log/slog"

	"github.com/meigma/filearray/cache"
	"github.com/meigma/filearray/internal/fileio"
	"github.com/meigma/filearray/internal/sizing"
)

// Cache is a byte-granular caching strategy with insertion-order eviction.
// Cache is not safe for concurrent use.
type Cache struct {
	file    *fileio.File
	size    int            // maximum cached entries
	entries map[int64]byte // offset -> cached value
	order   []int64        // cached offsets, oldest first
	logger  *slog.Logger

	hits      uint64
	misses    uint64
	evictions uint64
}

// Interface compliance.
var _ cache.Strategy = (*Cache)(nil)

// Option configures a fifo Cache.
type Option func(*Cache)

// WithCacheSize sets the maximum number of cached bytes. Defaults to
// cache.DefaultCacheSize.
func WithCacheSize(n int) Option {
	return func(c *Cache) {
		c.size = n
	}
}

// WithLogger sets the logger used for debug-level cache events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a fifo Cache for the file at path.
func New(path string, opts ...Option) (*Cache, error) {
	f, err := fileio.New(path)
	if err != nil {
		return nil, err
	}
	c := &Cache{
		file:   f,
		size:   cache.DefaultCacheSize,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.size <= 0 {
		return nil, cache.ErrInvalidCacheSize
	}
	c.entries = make(map[int64]byte, c.size)
	c.order = make([]int64, 0, c.size)
	return c, nil
}

// Size returns the configured maximum number of cached entries.
func (c *Cache) Size() int {
	return c.size
}

// Len always reports an untracked length.
func (c *Cache) Len() (int64, bool) {
	return 0, false
}

// Get returns the byte at off, reading and caching it on a miss.
// Reading past the end of the file returns io.EOF and caches nothing.
func (c *Cache) Get(off int64) (byte, error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: %d", cache.ErrOutOfRange, off)
	}
	if b, ok := c.entries[off]; ok {
		c.hits++
		return b, nil
	}
	c.misses++
	data, err := c.file.ReadAt(off, 1)
	if err != nil {
		return 0, fmt.Errorf("read offset %d: %w", off, err)
	}
	c.put(off, data[0])
	return data[0], nil
}

// Set writes b to the file at off and then caches it.
func (c *Cache) Set(off int64, b byte) error {
	if off < 0 {
		return fmt.Errorf("%w: %d", cache.ErrOutOfRange, off)
	}
	if err := c.file.WriteAt(off, []byte{b}); err != nil {
		return fmt.Errorf("write offset %d: %w", off, err)
	}
	c.put(off, b)
	return nil
}

// GetRange reads [start, stop) directly from the file. The cache is neither
// consulted nor populated.
func (c *Cache) GetRange(start, stop int64) ([]byte, error) {
	if start < 0 || stop < start {
		return nil, fmt.Errorf("%w: [%d, %d)", cache.ErrOutOfRange, start, stop)
	}
	n, err := sizing.ToInt(stop - start)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []byte{}, nil
	}
	data, err := c.file.ReadAt(start, n)
	if err != nil {
		return nil, fmt.Errorf("read range [%d, %d): %w", start, stop, err)
	}
	return data, nil
}

// SetRange writes data to the file in one call and then caches every byte,
// which may evict many older entries.
func (c *Cache) SetRange(start int64, data []byte) error {
	if start < 0 {
		return fmt.Errorf("%w: %d", cache.ErrOutOfRange, start)
	}
	if _, ok := sizing.AddInt64(start, int64(len(data))); !ok {
		return fmt.Errorf("%w: range starting at %d", cache.ErrOutOfRange, start)
	}
	if len(data) == 0 {
		return nil
	}
	if err := c.file.WriteAt(start, data); err != nil {
		return fmt.Errorf("write range at %d: %w", start, err)
	}
	for i, b := range data {
		c.put(start+int64(i), b)
	}
	return nil
}

// Offsets returns the cached offsets in insertion order, oldest first.
func (c *Cache) Offsets() []int64 {
	out := make([]int64, len(c.order))
	copy(out, c.order)
	return out
}

// Stats returns a snapshot of cache counters.
func (c *Cache) Stats() cache.Stats {
	return cache.Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Entries:   len(c.entries),
	}
}

// Reset drops every cached byte.
func (c *Cache) Reset() {
	clear(c.entries)
	c.order = c.order[:0]
}

// put inserts or updates off. Updating an existing offset keeps its queue
// position and never evicts.
func (c *Cache) put(off int64, b byte) {
	if _, ok := c.entries[off]; ok {
		c.entries[off] = b
		return
	}
	if len(c.entries) >= c.size {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		c.evictions++
		c.logger.Debug("byte evicted", slog.Int64("offset", oldest))
	}
	c.entries[off] = b
	c.order = append(c.order, off)
}
