// Command pipegraph generates typed node helpers from contract registries
// and converts emitted graph configurations between formats.
//
// Usage:
//
//	pipegraph [-log-level LEVEL] [-log-format FORMAT] <command> [flags] [args]
//
// Commands:
//
//	gen          generate typed helpers from a contract registry
//	convert      re-encode a graph configuration
//	fingerprint  print the stable fingerprint of a graph configuration
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
)

// ExitError is an error carrying the process exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// command is a subcommand. Its flags are parsed from args.
type command struct {
	name    string
	summary string
	run     func(ctx context.Context, e *env, args []string) error
}

var commands = []command{
	{"gen", "generate typed helpers from a contract registry", runGen},
	{"convert", "re-encode a graph configuration", runConvert},
	{"fingerprint", "print the stable fingerprint of a graph configuration", runFingerprint},
}

// env carries what commands share: output streams and the logger.
type env struct {
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
}

// run parses the global flags and dispatches to a command.
func run(ctx context.Context, outW, errW io.Writer, args []string) error {
	fs := flag.NewFlagSet("pipegraph", flag.ContinueOnError)
	fs.SetOutput(errW)
	fs.Usage = func() {
		fmt.Fprint(errW, `
pipegraph - typed pipeline graph tooling.

Usage:
  pipegraph [options] <command> [flags] [args]

Commands:
`)
		for _, c := range commands {
			fmt.Fprintf(errW, "  %-12s %s\n", c.name, c.summary)
		}
		fmt.Fprint(errW, "\nOptions:\n")
		fs.PrintDefaults()
	}
	logLevel := fs.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	logFormat := fs.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return usageError("%v", err)
	}
	logger, err := newLogger(*logLevel, *logFormat, errW)
	if err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return usageError("no command given")
	}

	name := fs.Arg(0)
	for _, c := range commands {
		if c.name == name {
			e := &env{out: outW, errOut: errW, logger: logger.With("command", name)}
			return c.run(ctx, e, fs.Args()[1:])
		}
	}
	return usageError("unknown command %q", name)
}

// newLogger creates a logger writing to w. It does not set the global
// logger.
func newLogger(levelStr, formatStr string, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(formatStr) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, usageError("invalid log-format: must be 'text' or 'json'")
	}
}

// newFlagSet creates the flag set of a command.
func newFlagSet(e *env, name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet("pipegraph "+name, flag.ContinueOnError)
	fs.SetOutput(e.errOut)
	fs.Usage = func() {
		fmt.Fprintf(e.errOut, "\nUsage:\n  pipegraph %s %s\n\nFlags:\n", name, usage)
		fs.PrintDefaults()
	}
	return fs
}

// parseFlags parses command flags, mapping -h to a clean exit.
func parseFlags(fs *flag.FlagSet, args []string) (done bool, err error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return true, nil
		}
		return false, usageError("%v", err)
	}
	return false, nil
}
