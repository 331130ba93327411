package gen

import (
	"log/slog"

	"github.com/syssam/pipegraph/compiler/load"
)

// DefaultHeader is the header comment of every generated file.
const DefaultHeader = "Code generated by pipegraph. DO NOT EDIT."

// Config holds the configuration of a generation run.
type Config struct {
	// Target is the output directory.
	Target string
	// Package overrides the registry's package name.
	Package string
	// Header is the comment placed at the top of generated files.
	// DefaultHeader is used when empty.
	Header string
	// Workers bounds the number of files rendered in parallel.
	// GOMAXPROCS is used when zero.
	Workers int
	// Features lists the enabled feature-flags.
	Features []Feature
	// Registry holds the contracts to generate helpers for.
	Registry *load.Registry
	// Logger reports progress. Nothing is logged when nil.
	Logger *slog.Logger
}

// OutputConfig groups the settings that decide where and how files are written.
type OutputConfig struct {
	Target  string
	Package string
	Header  string
}

// Output returns the output settings, resolving defaults.
func (c *Config) Output() OutputConfig {
	out := OutputConfig{Target: c.Target, Package: c.Package, Header: c.Header}
	if out.Package == "" && c.Registry != nil {
		out.Package = c.Registry.Package
	}
	if out.Header == "" {
		out.Header = DefaultHeader
	}
	return out
}

// FeatureEnabled reports if the given feature name is enabled.
// It's exported to be used by the generated code and the command line.
func (c *Config) FeatureEnabled(name string) (bool, error) {
	for _, f := range c.Features {
		if name == f.Name {
			return true, nil
		}
	}
	for _, f := range AllFeatures {
		if name == f.Name {
			return f.Default, nil
		}
	}
	return false, NewConfigError("Features", name, "unknown feature")
}

func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}
