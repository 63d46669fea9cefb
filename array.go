package filearray

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/meigma/filearray/cache"
	"github.com/meigma/filearray/cache/block"
	"github.com/meigma/filearray/cache/fifo"
	"github.com/meigma/filearray/internal/sizing"
)

// Array is a mutable byte sequence backed by a file.
// Array is not safe for concurrent use.
type Array struct {
	strategy cache.Strategy
	mode     Mode
}

// Interface compliance.
var (
	_ io.ReaderAt = (*Array)(nil)
	_ io.WriterAt = (*Array)(nil)
)

// Open opens the file at path with the block strategy.
func Open(path string, opts ...Option) (*Array, error) {
	return OpenBlocks(path, opts...)
}

// OpenBlocks opens the file at path with the block strategy. The file length
// is probed once and offsets at or beyond it are rejected with ErrOutOfRange.
func OpenBlocks(path string, opts ...Option) (*Array, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	blockOpts := []block.Option{
		block.WithBlockSize(cfg.blockSize),
		block.WithMaxBlocks(cfg.maxBlocks),
		block.WithWarmConcurrency(cfg.warmConcurrency),
		block.WithLogger(cfg.logger),
	}
	s, err := block.New(path, blockOpts...)
	if err != nil {
		return nil, fmt.Errorf("open block array: %w", err)
	}
	return &Array{strategy: s, mode: cfg.mode}, nil
}

// OpenBytes opens the file at path with the byte strategy. The file length
// is not tracked; callers must address offsets that exist in the file.
func OpenBytes(path string, opts ...Option) (*Array, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	s, err := fifo.New(path,
		fifo.WithCacheSize(cfg.cacheSize),
		fifo.WithLogger(cfg.logger))
	if err != nil {
		return nil, fmt.Errorf("open byte array: %w", err)
	}
	return &Array{strategy: s, mode: cfg.mode}, nil
}

// New wraps an existing strategy. Only WithMode applies; strategy options are
// ignored.
func New(s cache.Strategy, opts ...Option) (*Array, error) {
	if s == nil {
		return nil, errors.New("filearray: strategy is nil")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Array{strategy: s, mode: cfg.mode}, nil
}

// Mode returns the mode the Array was opened with.
func (a *Array) Mode() Mode {
	return a.mode
}

// Strategy returns the underlying caching strategy.
func (a *Array) Strategy() cache.Strategy {
	return a.strategy
}

// Len returns the file length if the strategy tracks it.
func (a *Array) Len() (int64, bool) {
	return a.strategy.Len()
}

// Get returns the byte at off.
func (a *Array) Get(off int64) (byte, error) {
	if err := a.checkOffset(off); err != nil {
		return 0, err
	}
	return a.strategy.Get(off)
}

// Set writes b at off.
func (a *Array) Set(off int64, b byte) error {
	if err := a.checkOffset(off); err != nil {
		return err
	}
	return a.strategy.Set(off, b)
}

// GetRange returns the bytes in [start, stop).
func (a *Array) GetRange(start, stop int64) ([]byte, error) {
	return a.getRange(Range{Start: start, Stop: stop})
}

// SetRange writes data into [start, stop). It fails with ErrLengthMismatch,
// before any write, unless len(data) == stop-start. Range writes are not
// atomic: an error partway through may leave a prefix written.
func (a *Array) SetRange(start, stop int64, data []byte) error {
	return a.setRange(Range{Start: start, Stop: stop}, data)
}

// Load resolves k and returns the addressed bytes. An Offset yields a single
// byte.
func (a *Array) Load(k Key) ([]byte, error) {
	switch k := k.(type) {
	case Offset:
		b, err := a.Get(int64(k))
		if err != nil {
			return nil, err
		}
		return []byte{b}, nil
	case Range:
		return a.getRange(k)
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidKey, k)
	}
}

// Store resolves k and writes data to it. An Offset requires exactly one
// byte of data.
func (a *Array) Store(k Key, data []byte) error {
	switch k := k.(type) {
	case Offset:
		if len(data) != 1 {
			return fmt.Errorf("%w: offset %d given %d bytes", ErrLengthMismatch, int64(k), len(data))
		}
		return a.Set(int64(k), data[0])
	case Range:
		return a.setRange(k, data)
	default:
		return fmt.Errorf("%w: %T", ErrInvalidKey, k)
	}
}

// ReadAt implements io.ReaderAt. When the length is tracked, a read running
// past the end returns the available bytes and io.EOF.
func (a *Array) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 {
		return 0, fmt.Errorf("read at %d: %w", off, ErrOutOfRange)
	}
	stop, ok := sizing.AddInt64(off, int64(len(p)))
	if !ok {
		return 0, fmt.Errorf("read at %d: %w", off, sizing.ErrOverflow)
	}

	short := false
	if length, tracked := a.strategy.Len(); tracked {
		if off >= length {
			return 0, io.EOF
		}
		if stop > length {
			stop = length
			short = true
		}
	}

	data, err := a.GetRange(off, stop)
	if err != nil {
		return 0, err
	}
	n := copy(p, data)
	if short {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt. It never extends the file: writes past a
// tracked length fail with ErrOutOfRange.
func (a *Array) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("write at %d: %w", off, ErrOutOfRange)
	}
	stop, ok := sizing.AddInt64(off, int64(len(p)))
	if !ok {
		return 0, fmt.Errorf("write at %d: %w", off, sizing.ErrOverflow)
	}
	if err := a.SetRange(off, stop, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Warm preloads the cache for [start, stop) when the strategy supports it
// and returns the number of entries loaded. Strategies without warming
// support return 0 and no error.
func (a *Array) Warm(ctx context.Context, start, stop int64) (int, error) {
	w, ok := a.strategy.(cache.Warmer)
	if !ok {
		return 0, nil
	}
	if err := a.validateRange(Range{Start: start, Stop: stop}); err != nil {
		return 0, err
	}
	return w.Warm(ctx, start, stop)
}

// Stats returns the strategy's cache counters.
func (a *Array) Stats() cache.Stats {
	return a.strategy.Stats()
}

// Reset drops every cached entry. Use it after the file has been modified
// by something other than this Array.
func (a *Array) Reset() {
	a.strategy.Reset()
}

func (a *Array) checkOffset(off int64) error {
	if off < 0 {
		return fmt.Errorf("%w: %d", ErrOutOfRange, off)
	}
	if length, tracked := a.strategy.Len(); tracked && off >= length {
		return fmt.Errorf("%w: %d (length %d)", ErrOutOfRange, off, length)
	}
	return nil
}

func (a *Array) validateRange(r Range) error {
	length, tracked := a.strategy.Len()
	return r.validate(length, tracked)
}

func (a *Array) getRange(r Range) ([]byte, error) {
	if err := a.validateRange(r); err != nil {
		return nil, err
	}
	return a.strategy.GetRange(r.Start, r.Stop)
}

func (a *Array) setRange(r Range, data []byte) error {
	if err := a.validateRange(r); err != nil {
		return err
	}
	if int64(len(data)) != r.Len() {
		return fmt.Errorf("%w: range %s covers %d bytes, given %d", ErrLengthMismatch, r, r.Len(), len(data))
	}
	return a.strategy.SetRange(r.Start, data)
}
