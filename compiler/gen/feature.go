package gen

import (
	"os"
	"path/filepath"
)

var (
	// FeatureRegistry emits registry.go, listing the calculator kinds of the
	// generated package.
	FeatureRegistry = Feature{
		Name:        "registry",
		Stage:       Stable,
		Default:     false,
		Description: "Registry lists every generated calculator kind in a Kinds variable",
		cleanup: func(c *Config) error {
			return remove(c.Target, registryFile)
		},
	}

	// FeatureMust emits a Must variant of each helper that panics on
	// construction errors. Useful for graphs assembled at init time.
	FeatureMust = Feature{
		Name:        "must",
		Stage:       Beta,
		Default:     false,
		Description: "Must generates helpers that panic instead of returning construction errors",
	}

	// AllFeatures holds a list of all feature-flags.
	AllFeatures = []Feature{
		FeatureRegistry,
		FeatureMust,
	}
)

// FindFeature returns the feature with the given name.
func FindFeature(name string) (Feature, bool) {
	for _, f := range AllFeatures {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// FeatureStage describes the stage of the codegen feature.
type FeatureStage int

const (
	_ FeatureStage = iota

	// Experimental features are in development.
	Experimental

	// Alpha features are complete but their output may still change.
	Alpha

	// Beta features are documented and no breaking changes are expected.
	Beta

	// Stable features have been in use for a while.
	Stable
)

func (s FeatureStage) String() string {
	switch s {
	case Experimental:
		return "experimental"
	case Alpha:
		return "alpha"
	case Beta:
		return "beta"
	case Stable:
		return "stable"
	default:
		return "unknown"
	}
}

// A Feature of the codegen.
type Feature struct {
	// Name of the feature.
	Name string

	// Stage of the feature.
	Stage FeatureStage

	// Default values indicates if this feature is enabled by default.
	Default bool

	// A Description of this feature.
	Description string

	// cleanup removes the output of a previous run once the feature is
	// disabled.
	cleanup func(*Config) error
}

// remove file (if exists) and its dir if it's empty.
func remove(dir, file string) error {
	if err := os.Remove(filepath.Join(dir, file)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	infos, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return os.Remove(dir)
	}
	return nil
}
