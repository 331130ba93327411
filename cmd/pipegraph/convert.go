package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/syssam/pipegraph/config"
)

func runConvert(_ context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "convert", "[-from FORMAT] [-to FORMAT] [-o FILE] FILE")
	from := fs.String("from", "", "Input format: json, yaml or msgpack. Inferred from the file extension when empty.")
	to := fs.String("to", "text", "Output format: text, json, yaml or msgpack.")
	output := fs.String("o", "", "Output file. Standard output when empty.")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	g, err := readConfig(fs, *from)
	if err != nil {
		return err
	}
	target, err := config.ParseFormat(*to)
	if err != nil {
		return usageError("%v", err)
	}
	b, err := config.Marshal(g, target)
	if err != nil {
		return err
	}
	if *output == "" {
		_, err = e.out.Write(b)
		return err
	}
	if err := os.WriteFile(*output, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *output, err)
	}
	e.logger.Info("configuration converted", "from", fs.Arg(0), "to", *output, "format", target)
	return nil
}

func runFingerprint(_ context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "fingerprint", "[-from FORMAT] FILE")
	from := fs.String("from", "", "Input format: json, yaml or msgpack. Inferred from the file extension when empty.")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	g, err := readConfig(fs, *from)
	if err != nil {
		return err
	}
	id, err := config.Fingerprint(g)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(e.out, id)
	return err
}

// readConfig decodes the configuration named by the single positional argument.
func readConfig(fs *flag.FlagSet, from string) (*config.Graph, error) {
	if fs.NArg() != 1 {
		return nil, usageError("expected exactly one input file, got %d", fs.NArg())
	}
	path := fs.Arg(0)
	format, err := inputFormat(path, from)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return config.Unmarshal(data, format)
}

func inputFormat(path, from string) (config.Format, error) {
	if from == "" {
		from = strings.TrimPrefix(filepath.Ext(path), ".")
		if from == "" {
			return "", usageError("cannot infer the format of %s; use -from", path)
		}
	}
	f, err := config.ParseFormat(from)
	if err != nil {
		return "", usageError("%v", err)
	}
	if f == config.FormatText {
		return "", usageError("the text format cannot be decoded; convert from json, yaml or msgpack")
	}
	return f, nil
}
