package load_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/pipegraph"
	"github.com/syssam/pipegraph/compiler/load"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	r, err := load.Load(filepath.Join("testdata", "valid.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "calculators", r.Package)
	assert.Equal(t, filepath.Join("testdata", "valid.yaml"), r.Path)
	require.Len(t, r.Contracts, 3)

	crop := r.Contracts[0]
	assert.Equal(t, "ImageCroppingCalculator", crop.Kind)
	assert.Equal(t, "CropImage", crop.FuncName())
	assert.Equal(t, "crops an image to a rectangle", crop.Comment)
	require.Len(t, crop.Inputs, 2)
	assert.Equal(t, &load.Port{Tag: "IMAGE", Type: "github.com/acme/media.Frame"}, crop.Inputs[0])
	assert.Equal(t, &load.Port{Tag: "RECT", Optional: true}, crop.Inputs[1])
	assert.Equal(t, "github.com/acme/media.CropOptions", crop.Options)

	concat, ok := r.Lookup("ConcatenateCalculator")
	require.True(t, ok)
	assert.Equal(t, "Concatenate", concat.FuncName())
	assert.True(t, concat.Inputs[0].Repeated)
	assert.Empty(t, concat.Inputs[0].Tag)

	loader := r.Contracts[2]
	assert.Equal(t, loader.SideOutputs, loader.Ports(load.SideOutputs))
	assert.Equal(t, "Loaded", loader.SideOutputs[0].Name)

	_, ok = r.Lookup("Missing")
	assert.False(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := load.Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()

	_, err := load.Load(filepath.Join("testdata", "invalid.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, load.ErrInvalidContract))
	assert.True(t, load.IsContractError(err))

	var agg *pipegraph.AggregateError
	require.True(t, errors.As(err, &agg))
	require.Len(t, agg.Errors, 6)

	msgs := make([]string, len(agg.Errors))
	for i, e := range agg.Errors {
		msgs[i] = e.Error()
	}
	assert.Contains(t, msgs[0], `contract ScaleCalculator field inputs[0].tag: tag "image" must match`)
	assert.Contains(t, msgs[1], `contract ScaleCalculator field inputs[1].type: type "media.frame"`)
	assert.Equal(t, "load: contract ScaleCalculator field outputs[0]: only inputs can be optional", msgs[2])
	assert.Equal(t, "load: contract ScaleCalculator field kind: declared more than once", msgs[3])
	assert.Equal(t, "load: contract ScaleCalculator field func: helper Scale already generated for ScaleCalculator", msgs[4])
	assert.Equal(t, `load: contract ScaleCalculator field options: "[]int" must be a qualified named type`, msgs[5])
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "minimal",
			yaml: "package: p\ncontracts:\n  - kind: PassThroughCalculator\n",
		},
		{
			name:    "unknown field",
			yaml:    "package: p\ncontracts:\n  - kind: A\n    input: []\n",
			wantErr: "field input not found",
		},
		{
			name:    "no contracts",
			yaml:    "package: p\n",
			wantErr: "load: registry field contracts: field is required",
		},
		{
			name:    "bad package",
			yaml:    "package: my-pkg\ncontracts:\n  - kind: A\n",
			wantErr: `load: registry field package: "my-pkg" is not a Go identifier`,
		},
		{
			name:    "duplicate tag",
			yaml:    "package: p\ncontracts:\n  - kind: A\n    outputs:\n      - {tag: X}\n      - {tag: X}\n",
			wantErr: `load: contract A field outputs[1]: tag "X" used more than once`,
		},
		{
			name:    "repeated optional",
			yaml:    "package: p\ncontracts:\n  - kind: A\n    inputs:\n      - {tag: X, repeated: true, optional: true}\n",
			wantErr: "a repeated port cannot be optional",
		},
		{
			name:    "null port",
			yaml:    "package: p\ncontracts:\n  - kind: A\n    inputs:\n      - null\n",
			wantErr: "load: contract A field inputs[0]: field is required",
		},
		{
			name: "default tags in every category",
			yaml: "package: p\ncontracts:\n  - kind: A\n    inputs: [{}]\n    outputs: [{}]\n    side_inputs: [{}]\n    side_outputs: [{}]\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r, err := load.Parse([]byte(tt.yaml))
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.NotNil(t, r)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    load.TypeRef
		wantErr bool
	}{
		{in: "", want: load.TypeRef{Name: "any"}},
		{in: "any", want: load.TypeRef{Name: "any"}},
		{in: "int", want: load.TypeRef{Name: "int"}},
		{in: "[]float32", want: load.TypeRef{Slice: true, Name: "float32"}},
		{in: "*image.Image", want: load.TypeRef{Pointer: true, PkgPath: "image", Name: "Image"}},
		{in: "github.com/acme/media.Frame", want: load.TypeRef{PkgPath: "github.com/acme/media", Name: "Frame"}},
		{in: "[]*gopkg.in/yaml.v3.Node", want: load.TypeRef{Slice: true, Pointer: true, PkgPath: "gopkg.in/yaml.v3", Name: "Node"}},
		{in: "integer", wantErr: true},
		{in: "github.com/acme/media", wantErr: true},
		{in: "media.frame", wantErr: true},
		{in: ".Frame", wantErr: true},
		{in: "map[string]int", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := load.ParseType(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.in != "" {
				assert.Equal(t, tt.in, got.String())
			}
		})
	}
}

func TestTypeRefPredicates(t *testing.T) {
	t.Parallel()

	anyRef, _ := load.ParseType("any")
	assert.True(t, anyRef.IsAny())
	assert.False(t, anyRef.Named())

	frame, _ := load.ParseType("github.com/acme/media.Frame")
	assert.False(t, frame.IsAny())
	assert.True(t, frame.Named())

	frames, _ := load.ParseType("[]github.com/acme/media.Frame")
	assert.False(t, frames.Named())
}

func TestCategory(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"inputs", "outputs", "side_inputs", "side_outputs"}, []string{
		load.Inputs.String(), load.Outputs.String(), load.SideInputs.String(), load.SideOutputs.String(),
	})
	assert.True(t, load.Inputs.Consumer())
	assert.False(t, load.Outputs.Consumer())
	assert.True(t, load.SideOutputs.SidePacket())
	assert.False(t, load.Inputs.SidePacket())
}

func TestFuncName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Calculator", (&load.Contract{Kind: "Calculator"}).FuncName())
	assert.Equal(t, "Blur", (&load.Contract{Kind: "BlurCalculator"}).FuncName())
	assert.Equal(t, "Smooth", (&load.Contract{Kind: "BlurCalculator", Func: "Smooth"}).FuncName())
}
