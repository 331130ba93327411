package gen

import (
	"context"
	"errors"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/pipegraph/compiler/load"
)

func loadContracts(t *testing.T) *load.Registry {
	t.Helper()
	r, err := load.Load(filepath.Join("testdata", "contracts.yaml"))
	require.NoError(t, err)
	return r
}

// readGenerated reads a generated file and checks that it parses.
func readGenerated(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	_, err = parser.ParseFile(token.NewFileSet(), path, b, parser.ParseComments)
	require.NoError(t, err, "generated %s:\n%s", name, b)
	return string(b)
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	target := t.TempDir()
	err := Generate(context.Background(),
		WithRegistry(loadContracts(t)),
		WithTarget(target),
		WithWorkers(2),
		WithFeatures(FeatureRegistry, FeatureMust),
	)
	require.NoError(t, err)

	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"crop_image.go", "concatenate.go", "model_loader.go", "split.go", "registry.go"}, names)

	t.Run("crop image", func(t *testing.T) {
		src := readGenerated(t, target, "crop_image.go")
		assert.Contains(t, src, "// Code generated by pipegraph. DO NOT EDIT.")
		assert.Contains(t, src, "package calculators")
		assert.Contains(t, src, `const CropImageKind = "ImageCroppingCalculator"`)
		assert.Contains(t, src, "// CropImage crops an image to a rectangle.")
		assert.Contains(t, src, "func CropImage(g *graph.Graph, in CropImageInputs) (CropImageOutputs, error) {")
		assert.Contains(t, src, "graph.Stream[media.Frame]")
		assert.Contains(t, src, "graph.Stream[any]")
		assert.Contains(t, src, "if in.Rect.Valid() {")
		assert.Contains(t, src, `in.Rect.ConnectTo(n.In("RECT"))`)
		assert.Contains(t, src, `in.Image.ConnectTo(n.In("IMAGE"))`)
		assert.Contains(t, src, "graph.Options[media.CropOptions](n)")
		assert.Contains(t, src, "*opts = *in.Options")
		assert.Contains(t, src, `out.Image = graph.Cast[media.Frame](n.Out("IMAGE"))`)
		assert.Contains(t, src, `fmt.Errorf("CropImage: %w", err)`)
		assert.Contains(t, src, "func MustCropImage(g *graph.Graph, in CropImageInputs) CropImageOutputs {")
	})

	t.Run("repeated inputs", func(t *testing.T) {
		src := readGenerated(t, target, "concatenate.go")
		assert.Contains(t, src, "[]graph.Stream[[]float32]")
		assert.Contains(t, src, "for _, h := range in.Ins {")
		assert.Contains(t, src, `h.ConnectTo(n.In(""))`)
		assert.Contains(t, src, `out.Out = graph.Cast[[]float32](n.Out(""))`)
		assert.NotContains(t, src, "Options")
	})

	t.Run("side packets", func(t *testing.T) {
		src := readGenerated(t, target, "model_loader.go")
		assert.Contains(t, src, "graph.SidePacket[string]")
		assert.Contains(t, src, `in.Path.ConnectTo(n.SideIn("PATH"))`)
		assert.Contains(t, src, `out.Loaded = graph.CastSidePacket[*ml.Model](n.SideOut("MODEL"))`)
	})

	t.Run("repeated outputs", func(t *testing.T) {
		src := readGenerated(t, target, "split.go")
		assert.Contains(t, src, "ChunksCount int")
		assert.Contains(t, src, "for range in.ChunksCount {")
		assert.Contains(t, src, `out.Chunks = append(out.Chunks, graph.Cast[[]float32](n.Out("CHUNK")))`)
	})

	t.Run("registry", func(t *testing.T) {
		src := readGenerated(t, target, "registry.go")
		assert.Contains(t, src, "var Kinds = []string{")
		assert.Contains(t, src, "CropImageKind,")
		assert.Contains(t, src, "SplitKind,")
	})
}

func TestGenerateDeterministic(t *testing.T) {
	t.Parallel()

	r := loadContracts(t)
	a, b := t.TempDir(), t.TempDir()
	require.NoError(t, Generate(context.Background(), WithRegistry(r), WithTarget(a), WithWorkers(1)))
	require.NoError(t, Generate(context.Background(), WithRegistry(r), WithTarget(b), WithWorkers(4)))
	for _, name := range []string{"crop_image.go", "concatenate.go", "model_loader.go", "split.go"} {
		assert.Equal(t, readGenerated(t, a, name), readGenerated(t, b, name), name)
	}
	assert.NoFileExists(t, filepath.Join(a, registryFile))
}

func TestGenerateCleansDisabledFeatures(t *testing.T) {
	t.Parallel()

	target := t.TempDir()
	r := loadContracts(t)
	require.NoError(t, Generate(context.Background(), WithRegistry(r), WithTarget(target), WithFeatures(FeatureRegistry)))
	assert.FileExists(t, filepath.Join(target, registryFile))

	require.NoError(t, Generate(context.Background(), WithRegistry(r), WithTarget(target)))
	assert.NoFileExists(t, filepath.Join(target, registryFile))
	assert.FileExists(t, filepath.Join(target, "split.go"))
}

func TestGeneratePackageOverride(t *testing.T) {
	t.Parallel()

	target := t.TempDir()
	require.NoError(t, Generate(context.Background(),
		WithRegistry(loadContracts(t)),
		WithTarget(target),
		WithPackage("nodes"),
		WithHeader("Generated for tests."),
	))
	src := readGenerated(t, target, "split.go")
	assert.Contains(t, src, "// Generated for tests.")
	assert.Contains(t, src, "package nodes")
}

func TestGenerateErrors(t *testing.T) {
	t.Parallel()

	valid := func(t *testing.T) *load.Registry { return loadContracts(t) }

	t.Run("missing target", func(t *testing.T) {
		t.Parallel()
		err := NewGenerator(&Config{Registry: valid(t)}).Generate(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingConfig))
	})

	t.Run("missing registry", func(t *testing.T) {
		t.Parallel()
		err := NewGenerator(&Config{Target: t.TempDir()}).Generate(context.Background())
		assert.True(t, IsConfigError(err))
	})

	t.Run("invalid registry", func(t *testing.T) {
		t.Parallel()
		r := &load.Registry{Package: "p", Contracts: []*load.Contract{{Kind: "A"}, {Kind: "A"}}}
		err := NewGenerator(&Config{Target: t.TempDir(), Registry: r}).Generate(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrGenerationFailed))
		assert.True(t, errors.Is(err, load.ErrInvalidContract))
	})

	t.Run("file name collision", func(t *testing.T) {
		t.Parallel()
		r := &load.Registry{Package: "p", Contracts: []*load.Contract{{Kind: "RegistryCalculator"}}}
		err := NewGenerator(&Config{Target: t.TempDir(), Registry: r}).Generate(context.Background())
		require.Error(t, err)
		assert.True(t, IsGenerationError(err))
		assert.Contains(t, err.Error(), "collides with the registry")
	})

	t.Run("field collision", func(t *testing.T) {
		t.Parallel()
		r := &load.Registry{Package: "p", Contracts: []*load.Contract{{
			Kind:    "ScaleCalculator",
			Inputs:  []*load.Port{{Tag: "OPTIONS"}},
			Options: "github.com/acme/media.ScaleOptions",
		}}}
		err := NewGenerator(&Config{Target: t.TempDir(), Registry: r}).Generate(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrGenerationFailed))
		assert.Contains(t, err.Error(), "field Options declared twice")
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := NewGenerator(&Config{Target: t.TempDir(), Registry: valid(t)}).Generate(ctx)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestFieldName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cat  load.Category
		port load.Port
		want string
	}{
		{load.Inputs, load.Port{Tag: "IMAGE"}, "Image"},
		{load.Inputs, load.Port{Tag: "NORM_RECT"}, "NormRect"},
		{load.Inputs, load.Port{}, "In"},
		{load.Outputs, load.Port{}, "Out"},
		{load.SideInputs, load.Port{}, "SideIn"},
		{load.SideOutputs, load.Port{Tag: "_"}, "SideOut"},
		{load.Inputs, load.Port{Tag: "TENSOR", Repeated: true}, "Tensors"},
		{load.Inputs, load.Port{Tag: "_1"}, "Port1"},
		{load.Outputs, load.Port{Tag: "MODEL", Name: "Loaded"}, "Loaded"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fieldName(tt.cat, &tt.port), "%s %+v", tt.cat, tt.port)
	}
}

func TestFileName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "crop_image.go", fileName(&load.Contract{Kind: "ImageCroppingCalculator", Func: "CropImage"}))
	assert.Equal(t, "concatenate.go", fileName(&load.Contract{Kind: "ConcatenateCalculator"}))
}
