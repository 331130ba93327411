package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/syssam/pipegraph/compiler/gen"
	"github.com/syssam/pipegraph/compiler/load"
)

// debounce is how long the watcher waits for writes to settle.
const debounce = 100 * time.Millisecond

func runGen(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "gen", "-contracts FILE -target DIR [flags]")
	contracts := fs.String("contracts", "", "Path to the contract registry (YAML). Required.")
	target := fs.String("target", "", "Directory the helpers are written to. Required.")
	pkg := fs.String("package", "", "Package name of the generated code. Defaults to the registry package.")
	features := fs.String("features", "", "Comma-separated optional features to enable, e.g. 'registry,must'.")
	workers := fs.Int("workers", 0, "Maximum number of files rendered concurrently. Defaults to GOMAXPROCS.")
	watch := fs.Bool("watch", false, "Regenerate whenever the contract registry changes.")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	if *contracts == "" || *target == "" {
		fs.Usage()
		return usageError("gen: -contracts and -target are required")
	}
	if fs.NArg() > 0 {
		return usageError("gen: unexpected arguments %v", fs.Args())
	}

	opts := []gen.Option{gen.WithTarget(*target), gen.WithLogger(e.logger)}
	if *pkg != "" {
		opts = append(opts, gen.WithPackage(*pkg))
	}
	if *features != "" {
		opts = append(opts, gen.WithFeatureNames(strings.Split(*features, ",")...))
	}
	if *workers != 0 {
		opts = append(opts, gen.WithWorkers(*workers))
	}
	// Validate flags before touching the registry.
	if _, err := gen.NewConfig(opts...); err != nil {
		return usageError("%v", err)
	}

	generate := func() error {
		r, err := load.Load(*contracts)
		if err != nil {
			return err
		}
		return gen.Generate(ctx, append(opts, gen.WithRegistry(r))...)
	}
	if !*watch {
		return generate()
	}
	return watchFile(ctx, e, *contracts, generate)
}

// watchFile calls fn once and then after every change to path until ctx is
// done. Errors returned by fn are logged and watching continues.
func watchFile(ctx context.Context, e *env, path string, fn func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors often replace files instead of writing them.
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	e.logger.Info("watching contracts", "path", path)
	if err := fn(); err != nil {
		e.logger.Error("generation failed", "error", err)
	}

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			e.logger.Info("watch stopped")
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			e.logger.Debug("contracts changed", "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			trigger = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			e.logger.Warn("watch error", "error", err)
		case <-trigger:
			trigger = nil
			if err := fn(); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				e.logger.Error("generation failed", "error", err)
				continue
			}
			e.logger.Info("regenerated", "path", path)
		}
	}
}
