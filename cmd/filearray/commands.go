package main

import (
	"context"
	_ "crypto/sha256" // registers the canonical digest algorithm
	"fmt"
	"io"

	"github.com/natefinch/atomic"
	"github.com/opencontainers/go-digest"
	flag "github.com/spf13/pflag"

	"github.com/meigma/filearray"
)

// repeatByte is an endless reader of a single byte value.
type repeatByte byte

func (r repeatByte) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r)
	}
	return len(p), nil
}

func cmdCreate(_ context.Context, args []string, out, _ io.Writer) error {
	fs := newFlagSet("create")
	size := fs.Int64("size", 0, "file size in bytes")
	fill := fs.String("fill", "0x00", "fill byte (0xNN or a single character)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: create requires PATH", errUsage)
	}
	if *size < 0 {
		return fmt.Errorf("%w: negative size %d", errUsage, *size)
	}
	b, err := parseByte(*fill)
	if err != nil {
		return err
	}

	path := fs.Arg(0)
	if err := atomic.WriteFile(path, io.LimitReader(repeatByte(b), *size)); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	fmt.Fprintf(out, "created %s (%d bytes)\n", path, *size)
	return nil
}

func cmdGet(_ context.Context, args []string, out, errOut io.Writer) error {
	arr, _, rest, err := openArray("get", args, errOut, nil)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("%w: get requires OFFSET", errUsage)
	}
	off, err := parseOffset(rest[0])
	if err != nil {
		return err
	}
	b, err := arr.Get(off)
	if err != nil {
		return err
	}
	if arr.Mode() == filearray.ModeText {
		fmt.Fprintf(out, "%c\n", b)
		return nil
	}
	fmt.Fprintf(out, "0x%02x\n", b)
	return nil
}

func cmdSet(_ context.Context, args []string, _, errOut io.Writer) error {
	arr, _, rest, err := openArray("set", args, errOut, nil)
	if err != nil {
		return err
	}
	if len(rest) != 2 {
		return fmt.Errorf("%w: set requires OFFSET and VALUE", errUsage)
	}
	off, err := parseOffset(rest[0])
	if err != nil {
		return err
	}
	b, err := parseByte(rest[1])
	if err != nil {
		return err
	}
	return arr.Set(off, b)
}

func cmdDump(_ context.Context, args []string, out, errOut io.Writer) error {
	arr, _, rest, err := openArray("dump", args, errOut, nil)
	if err != nil {
		return err
	}
	start, stop, err := rangeArgs(arr, rest)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, io.NewSectionReader(arr, start, stop-start))
	return err
}

func cmdDigest(_ context.Context, args []string, out, errOut io.Writer) error {
	arr, _, rest, err := openArray("digest", args, errOut, nil)
	if err != nil {
		return err
	}
	start, stop, err := rangeArgs(arr, rest)
	if err != nil {
		return err
	}
	digester := digest.Canonical.Digester()
	if _, err := io.Copy(digester.Hash(), io.NewSectionReader(arr, start, stop-start)); err != nil {
		return err
	}
	fmt.Fprintln(out, digester.Digest())
	return nil
}

func cmdStat(ctx context.Context, args []string, out, errOut io.Writer) error {
	var warm bool
	arr, cfg, rest, err := openArray("stat", args, errOut, func(fs *flag.FlagSet) {
		fs.BoolVar(&warm, "warm", false, "load every block before printing stats (block strategy)")
	})
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return fmt.Errorf("%w: stat takes only PATH", errUsage)
	}

	fmt.Fprintf(out, "strategy:  %s\n", cfg.Strategy)
	fmt.Fprintf(out, "mode:      %s\n", arr.Mode())
	length, tracked := arr.Len()
	if tracked {
		fmt.Fprintf(out, "length:    %d\n", length)
	} else {
		fmt.Fprintln(out, "length:    untracked")
	}

	if warm && tracked {
		n, err := arr.Warm(ctx, 0, length)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "warmed:    %d\n", n)
	}

	stats := arr.Stats()
	fmt.Fprintf(out, "entries:   %d\n", stats.Entries)
	fmt.Fprintf(out, "hits:      %d\n", stats.Hits)
	fmt.Fprintf(out, "misses:    %d\n", stats.Misses)
	fmt.Fprintf(out, "evictions: %d\n", stats.Evictions)
	return nil
}
