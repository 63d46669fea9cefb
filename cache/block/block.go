// Package block implements a filearray caching strategy that stores whole
// fixed-size blocks of the file in memory.
//
// A single-byte write patches the cached block and writes the entire block
// back, so the cache and the file agree after every write. Range operations
// iterate byte by byte. The cache is unbounded unless WithMaxBlocks is set.
package block

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/filearray/cache"
	"github.com/meigma/filearray/internal/fileio"
	"github.com/meigma/filearray/internal/sizing"
)

// Cache is a block-granular caching strategy over a single file.
// Cache is not safe for concurrent use.
type Cache struct {
	file        *fileio.File
	blockSize   int64            // size in bytes of each block
	maxBlocks   int              // maximum cached blocks (0 = unlimited)
	warmWorkers int              // concurrent reads during Warm
	length      int64            // file length probed at construction
	blocks      map[int64][]byte // block index -> block content
	order       []int64          // insertion order, tracked only when bounded
	logger      *slog.Logger

	hits      uint64
	misses    uint64
	evictions uint64
}

// Interface compliance.
var _ cache.Strategy = (*Cache)(nil)

// Option configures a block Cache.
type Option func(*Cache)

// WithBlockSize sets the block size in bytes. Defaults to cache.DefaultBlockSize.
func WithBlockSize(n int64) Option {
	return func(c *Cache) {
		c.blockSize = n
	}
}

// WithMaxBlocks bounds the number of cached blocks, evicting the oldest
// inserted block first. Values <= 0 disable the limit.
func WithMaxBlocks(n int) Option {
	return func(c *Cache) {
		if n < 0 {
			n = 0
		}
		c.maxBlocks = n
	}
}

// WithWarmConcurrency sets how many blocks Warm reads at once. Defaults to
// cache.DefaultWarmConcurrency. Values < 1 are treated as 1.
func WithWarmConcurrency(n int) Option {
	return func(c *Cache) {
		if n < 1 {
			n = 1
		}
		c.warmWorkers = n
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

// New creates a block Cache for the file at path. The file length is probed
// once here and never again.
func New(path string, opts ...Option) (*Cache, error) {
	f, err := fileio.New(path)
	if err != nil {
		return nil, err
	}
	c := &Cache{
		file:        f,
		blockSize:   cache.DefaultBlockSize,
		warmWorkers: cache.DefaultWarmConcurrency,
		blocks:      make(map[int64][]byte),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.blockSize <= 0 {
		return nil, cache.ErrInvalidBlockSize
	}
	if _, err := sizing.ToInt(c.blockSize); err != nil {
		return nil, fmt.Errorf("block size %d: %w", c.blockSize, err)
	}
	length, err := f.Size()
	if err != nil {
		return nil, err
	}
	c.length = length
	return c, nil
}

// BlockSize returns the configured block size.
func (c *Cache) BlockSize() int64 {
	return c.blockSize
}

// WarmConcurrency returns how many blocks Warm reads at once.
func (c *Cache) WarmConcurrency() int {
	return c.warmWorkers
}

// Len returns the file length probed at construction.
func (c *Cache) Len() (int64, bool) {
	return c.length, true
}

// Get returns the byte at off, loading its block on a miss.
func (c *Cache) Get(off int64) (byte, error) {
	if err := c.checkOffset(off); err != nil {
		return 0, err
	}
	index, inner := off/c.blockSize, off%c.blockSize
	data, err := c.block(index)
	if err != nil {
		return 0, err
	}
	return data[inner], nil
}

// Set writes b at off. The containing block is loaded if absent, patched,
// and written back in full. If the write-back fails the cached block keeps
// its previous content.
func (c *Cache) Set(off int64, b byte) error {
	if err := c.checkOffset(off); err != nil {
		return err
	}
	index, inner := off/c.blockSize, off%c.blockSize
	data, err := c.block(index)
	if err != nil {
		return err
	}

	prev := data[inner]
	data[inner] = b
	if err := c.file.WriteAt(index*c.blockSize, data); err != nil {
		data[inner] = prev
		return fmt.Errorf("write block %d: %w", index, err)
	}
	c.logger.Debug("block written",
		slog.Int64("block", index),
		slog.Int("bytes", len(data)))
	return nil
}

// GetRange returns the bytes in [start, stop) by reading them one at a time.
func (c *Cache) GetRange(start, stop int64) ([]byte, error) {
	if err := c.checkRange(start, stop); err != nil {
		return nil, err
	}
	n, err := sizing.ToInt(stop - start)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, n)
	for off := start; off < stop; off++ {
		b, err := c.Get(off)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// SetRange writes data starting at start one byte at a time. Each byte
// costs a full block write-back.
func (c *Cache) SetRange(start int64, data []byte) error {
	stop, ok := sizing.AddInt64(start, int64(len(data)))
	if !ok {
		return fmt.Errorf("%w: range starting at %d", cache.ErrOutOfRange, start)
	}
	if err := c.checkRange(start, stop); err != nil {
		return err
	}
	for i, b := range data {
		if err := c.Set(start+int64(i), b); err != nil {
			return err
		}
	}
	return nil
}

// Warm loads every uncached block overlapping [start, stop) using up to the
// configured number of concurrent reads. Blocks are only installed once all
// reads succeed. When the cache is bounded by WithMaxBlocks, only the first
// that many blocks of the range are warmed. It returns the number of blocks
// loaded.
func (c *Cache) Warm(ctx context.Context, start, stop int64) (int, error) {
	if err := c.checkRange(start, stop); err != nil {
		return 0, err
	}
	if start == stop {
		return 0, nil
	}

	first, last := start/c.blockSize, (stop-1)/c.blockSize
	if c.maxBlocks > 0 {
		last = min(last, first+int64(c.maxBlocks)-1)
	}
	var missing []int64
	for index := first; index <= last; index++ {
		if _, ok := c.blocks[index]; !ok {
			missing = append(missing, index)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	loaded := make([][]byte, len(missing))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.warmWorkers)
	for i, index := range missing {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := c.readBlock(index)
			if err != nil {
				return err
			}
			loaded[i] = data
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}

	for i, index := range missing {
		c.install(index, loaded[i])
	}
	c.logger.Debug("blocks warmed",
		slog.Int64("start", start),
		slog.Int64("stop", stop),
		slog.Int("blocks", len(missing)))
	return len(missing), nil
}

// Stats returns a snapshot of cache counters.
func (c *Cache) Stats() cache.Stats {
	return cache.Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Entries:   len(c.blocks),
	}
}

// Reset drops every cached block.
func (c *Cache) Reset() {
	clear(c.blocks)
	c.order = c.order[:0]
}

func (c *Cache) checkOffset(off int64) error {
	if off < 0 || off >= c.length {
		return fmt.Errorf("%w: %d (length %d)", cache.ErrOutOfRange, off, c.length)
	}
	return nil
}

func (c *Cache) checkRange(start, stop int64) error {
	if start < 0 || stop < start || stop > c.length {
		return fmt.Errorf("%w: [%d, %d) (length %d)", cache.ErrOutOfRange, start, stop, c.length)
	}
	return nil
}

// block returns the cached content of block index, reading it on a miss.
func (c *Cache) block(index int64) ([]byte, error) {
	if data, ok := c.blocks[index]; ok {
		c.hits++
		return data, nil
	}
	c.misses++
	data, err := c.readBlock(index)
	if err != nil {
		return nil, err
	}
	c.install(index, data)
	return data, nil
}

// readBlock reads block index from the file. The final block may be shorter
// than the block size. readBlock touches no cache state.
func (c *Cache) readBlock(index int64) ([]byte, error) {
	start, ok := sizing.MulInt64(index, c.blockSize)
	if !ok || start >= c.length {
		return nil, fmt.Errorf("%w: block %d", cache.ErrOutOfRange, index)
	}
	n := min(c.blockSize, c.length-start)

	data, err := c.file.ReadAt(start, int(n))
	if err != nil {
		return nil, fmt.Errorf("read block %d: %w", index, err)
	}
	c.logger.Debug("block loaded",
		slog.Int64("block", index),
		slog.Int64("offset", start),
		slog.Int("bytes", len(data)))
	return data, nil
}

func (c *Cache) install(index int64, data []byte) {
	if _, ok := c.blocks[index]; ok {
		c.blocks[index] = data
		return
	}
	if c.maxBlocks > 0 {
		for len(c.blocks) >= c.maxBlocks {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.blocks, oldest)
			c.evictions++
			c.logger.Debug("block evicted", slog.Int64("block", oldest))
		}
	}
	c.blocks[index] = data
	if c.maxBlocks > 0 {
		c.order = append(c.order, index)
	}
}
