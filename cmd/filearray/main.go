// Command filearray inspects and edits files through a filearray.Array.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	flag "github.com/spf13/pflag"

	"github.com/meigma/filearray"
)

const usage = `usage: filearray <command> [flags] ARGS

commands:
  create [--size N] [--fill BYTE] PATH   create a file of N bytes atomically
  get PATH OFFSET                        print the byte at OFFSET
  set PATH OFFSET VALUE                  write VALUE (0xNN or one character) at OFFSET
  dump PATH [START STOP]                 write the raw bytes of a range to stdout
  digest PATH [START STOP]               print the sha256 digest of a range
  stat [--warm] PATH                     print length, strategy and cache stats

array flags (all commands but create):
`

var errUsage = errors.New("usage")

type command func(ctx context.Context, args []string, out, errOut io.Writer) error

var commands = map[string]command{
	"create": cmdCreate,
	"get":    cmdGet,
	"set":    cmdSet,
	"dump":   cmdDump,
	"digest": cmdDigest,
	"stat":   cmdStat,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one subcommand and returns the process exit code.
func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(out)
		return 0
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command %q\n", args[0])
		printUsage(errOut)
		return 1
	}
	if err := cmd(ctx, args[1:], out, errOut); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(out)
			return 0
		}
		fmt.Fprintln(errOut, "error:", err)
		if errors.Is(err, errUsage) {
			printUsage(errOut)
		}
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fs := newFlagSet("filearray")
	registerArrayFlags(fs)
	fmt.Fprint(w, usage)
	fmt.Fprint(w, fs.FlagUsages())
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openArray parses args with the shared array flags plus any registered by
// extra, and opens the first positional argument. It returns the remaining
// positional arguments.
func openArray(name string, args []string, errOut io.Writer, extra func(*flag.FlagSet)) (*filearray.Array, config, []string, error) {
	fs := newFlagSet(name)
	af := registerArrayFlags(fs)
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, config{}, nil, err
	}
	if fs.NArg() < 1 {
		return nil, config{}, nil, fmt.Errorf("%w: %s requires PATH", errUsage, name)
	}
	cfg, err := af.resolve(fs)
	if err != nil {
		return nil, config{}, nil, err
	}
	arr, err := cfg.open(fs.Arg(0), newLogger(errOut, af.verbose))
	if err != nil {
		return nil, config{}, nil, err
	}
	return arr, cfg, fs.Args()[1:], nil
}

func parseOffset(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q: %w", s, err)
	}
	return n, nil
}

// parseByte accepts a numeric literal (0x41, 65, 0o101) or a single character.
func parseByte(s string) (byte, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid byte %q: %w", s, err)
	}
	return byte(n), nil
}

// rangeArgs returns [START, STOP) from args, or the whole array when args
// is empty and the length is tracked. A STOP past a tracked length is
// rejected.
func rangeArgs(arr *filearray.Array, args []string) (int64, int64, error) {
	switch len(args) {
	case 0:
		length, ok := arr.Len()
		if !ok {
			return 0, 0, fmt.Errorf("%w: START and STOP are required when the length is untracked", errUsage)
		}
		return 0, length, nil
	case 2:
		start, err := parseOffset(args[0])
		if err != nil {
			return 0, 0, err
		}
		stop, err := parseOffset(args[1])
		if err != nil {
			return 0, 0, err
		}
		if start < 0 || stop < start {
			return 0, 0, fmt.Errorf("%w: [%d, %d)", filearray.ErrInvalidKey, start, stop)
		}
		if length, ok := arr.Len(); ok && stop > length {
			return 0, 0, fmt.Errorf("%w: [%d, %d) (length %d)", filearray.ErrOutOfRange, start, stop, length)
		}
		return start, stop, nil
	default:
		return 0, 0, fmt.Errorf("%w: expected START and STOP", errUsage)
	}
}
