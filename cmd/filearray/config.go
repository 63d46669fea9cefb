package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"
	"github.com/tailscale/hujson"

	"github.com/meigma/filearray"
	"github.com/meigma/filearray/cache"
)

const (
	strategyBlock = "block"
	strategyBytes = "bytes"
)

var errUnknownStrategy = errors.New("unknown strategy")

// config holds the array settings shared by every subcommand. It can be
// loaded from a JSONC file and overridden by flags.
type config struct {
	Strategy  string `json:"strategy"`
	BlockSize int64  `json:"block_size"` //nolint:tagliatelle // snake_case for config file
	CacheSize int    `json:"cache_size"` //nolint:tagliatelle // snake_case for config file
	MaxBlocks int    `json:"max_blocks"` //nolint:tagliatelle // snake_case for config file
	Text      bool   `json:"text"`
}

func defaultConfig() config {
	return config{
		Strategy:  strategyBlock,
		BlockSize: cache.DefaultBlockSize,
		CacheSize: cache.DefaultCacheSize,
	}
}

// arrayFlags are the flags registered on every subcommand.
type arrayFlags struct {
	configPath string
	strategy   string
	blockSize  int64
	cacheSize  int
	maxBlocks  int
	text       bool
	verbose    bool
}

func registerArrayFlags(fs *flag.FlagSet) *arrayFlags {
	f := &arrayFlags{}
	def := defaultConfig()
	fs.StringVarP(&f.configPath, "config", "c", "", "JSONC config file")
	fs.StringVar(&f.strategy, "strategy", def.Strategy, "caching strategy: block or bytes")
	fs.Int64Var(&f.blockSize, "block-size", def.BlockSize, "block size in bytes (block strategy)")
	fs.IntVar(&f.cacheSize, "cache-size", def.CacheSize, "cached byte entries (bytes strategy)")
	fs.IntVar(&f.maxBlocks, "max-blocks", 0, "maximum cached blocks, 0 for unbounded (block strategy)")
	fs.BoolVar(&f.text, "text", false, "open in text mode")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log cache events to stderr")
	return f
}

// resolve merges the config file (if any) with flags that were set explicitly.
func (f *arrayFlags) resolve(fs *flag.FlagSet) (config, error) {
	cfg := defaultConfig()
	if f.configPath != "" {
		loaded, err := loadConfig(f.configPath)
		if err != nil {
			return config{}, err
		}
		cfg = mergeConfig(cfg, loaded)
	}
	if fs.Changed("strategy") {
		cfg.Strategy = f.strategy
	}
	if fs.Changed("block-size") {
		cfg.BlockSize = f.blockSize
	}
	if fs.Changed("cache-size") {
		cfg.CacheSize = f.cacheSize
	}
	if fs.Changed("max-blocks") {
		cfg.MaxBlocks = f.maxBlocks
	}
	if fs.Changed("text") {
		cfg.Text = f.text
	}
	return cfg, nil
}

func loadConfig(path string) (config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided path is intentional
	if err != nil {
		return config{}, fmt.Errorf("read config: %w", err)
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return config{}, fmt.Errorf("invalid JSONC: %w", err)
	}
	var cfg config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return config{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return cfg, nil
}

func mergeConfig(base, overlay config) config {
	if overlay.Strategy != "" {
		base.Strategy = overlay.Strategy
	}
	if overlay.BlockSize != 0 {
		base.BlockSize = overlay.BlockSize
	}
	if overlay.CacheSize != 0 {
		base.CacheSize = overlay.CacheSize
	}
	if overlay.MaxBlocks != 0 {
		base.MaxBlocks = overlay.MaxBlocks
	}
	if overlay.Text {
		base.Text = true
	}
	return base
}

// open opens path as an Array according to cfg.
func (cfg config) open(path string, logger *slog.Logger) (*filearray.Array, error) {
	opts := []filearray.Option{
		filearray.WithBlockSize(cfg.BlockSize),
		filearray.WithCacheSize(cfg.CacheSize),
		filearray.WithMaxBlocks(cfg.MaxBlocks),
		filearray.WithLogger(logger),
	}
	if cfg.Text {
		opts = append(opts, filearray.WithMode(filearray.ModeText))
	}
	switch cfg.Strategy {
	case strategyBlock:
		return filearray.OpenBlocks(path, opts...)
	case strategyBytes:
		return filearray.OpenBytes(path, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownStrategy, cfg.Strategy)
	}
}
