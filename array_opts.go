package filearray

import (
	"log/slog"

	"github.com/meigma/filearray/cache"
)

// Mode selects how an Array's contents are presented.
type Mode uint8

const (
	// ModeBinary presents contents as raw bytes. It is the default.
	ModeBinary Mode = iota

	// ModeText additionally enables the UTF-8 validated GetText and SetText
	// accessors.
	ModeText
)

func (m Mode) String() string {
	switch m {
	case ModeBinary:
		return "binary"
	case ModeText:
		return "text"
	default:
		return "unknown"
	}
}

// Option configures an Array.
type Option func(*config)

type config struct {
	mode            Mode
	blockSize       int64
	maxBlocks       int
	warmConcurrency int
	cacheSize       int
	logger          *slog.Logger
}

func defaultConfig() config {
	return config{
		mode:            ModeBinary,
		blockSize:       cache.DefaultBlockSize,
		cacheSize:       cache.DefaultCacheSize,
		warmConcurrency: cache.DefaultWarmConcurrency,
		logger:          slog.New(slog.DiscardHandler),
	}
}

// WithMode sets binary or text mode. Defaults to ModeBinary.
func WithMode(m Mode) Option {
	return func(c *config) {
		c.mode = m
	}
}

// WithBlockSize sets the block size used by the block strategy
// (default: 512 KiB). It is ignored by the byte strategy.
func WithBlockSize(n int64) Option {
	return func(c *config) {
		c.blockSize = n
	}
}

// WithMaxBlocks bounds the number of blocks the block strategy keeps cached,
// evicting the oldest inserted block first. Values <= 0 keep the cache
// unbounded, which is the default.
func WithMaxBlocks(n int) Option {
	return func(c *config) {
		c.maxBlocks = n
	}
}

// WithWarmConcurrency sets how many blocks Warm reads at once (default: 4).
// Values < 1 are treated as 1.
func WithWarmConcurrency(n int) Option {
	return func(c *config) {
		c.warmConcurrency = n
	}
}

// WithCacheSize sets the number of bytes the byte strategy keeps cached
// (default: 1024). It is ignored by the block strategy.
func WithCacheSize(n int) Option {
	return func(c *config) {
		c.cacheSize = n
	}
}

// WithLogger sets the logger used for debug-level cache events.
// By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
