package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/pipegraph/config"
)

const blurText = `input_stream: "in"
output_stream: "out"
node {
  calculator: "BlurCalculator"
  input_stream: "IMAGE:in"
  output_stream: "IMAGE:out"
  node_options {
    [type.googleapis.com/media.BlurOptions] {
      radius: 3
    }
  }
}`

// runCLI runs the command line and returns its standard output and error.
func runCLI(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	err := run(ctx, out, errOut, args)
	return out.String(), errOut.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected an ExitError, got %v", err)
	return exitErr.Code
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	_, errOut, err := runCLI(t, context.Background(), "-h")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Usage:")
	assert.Contains(t, errOut, "fingerprint")

	_, errOut, err = runCLI(t, context.Background(), "convert", "-h")
	require.NoError(t, err)
	assert.Contains(t, errOut, "pipegraph convert")
}

func TestRun_UsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, "no command given"},
		{"unknown command", []string{"render"}, `unknown command "render"`},
		{"unknown flag", []string{"-verbose"}, "flag provided but not defined: -verbose"},
		{"bad log level", []string{"-log-level", "trace", "convert"}, "invalid log-level"},
		{"bad log format", []string{"-log-format", "xml", "convert"}, "invalid log-format"},
		{"gen without target", []string{"gen", "-contracts", "c.yaml"}, "-contracts and -target are required"},
		{"gen with unknown feature", []string{"gen", "-contracts", "c.yaml", "-target", "out", "-features", "privacy"}, "unknown feature"},
		{"convert without file", []string{"convert"}, "expected exactly one input file, got 0"},
		{"convert from text", []string{"convert", "graph.pbtxt"}, "text format cannot be decoded"},
		{"convert to unknown", []string{"convert", "-to", "xml", filepath.Join("testdata", "graph.json")}, "unsupported format"},
		{"fingerprint without extension", []string{"fingerprint", "graph"}, "use -from"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := runCLI(t, context.Background(), tt.args...)
			require.Error(t, err)
			assert.Equal(t, 2, exitCode(t, err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRun_Convert(t *testing.T) {
	t.Parallel()

	t.Run("json to text", func(t *testing.T) {
		t.Parallel()
		out, _, err := runCLI(t, context.Background(), "convert", filepath.Join("testdata", "graph.json"))
		require.NoError(t, err)
		assert.Equal(t, blurText, strings.TrimSpace(out))
	})

	t.Run("through yaml and msgpack files", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		yml := filepath.Join(dir, "graph.yaml")
		mp := filepath.Join(dir, "graph.bin")

		_, _, err := runCLI(t, context.Background(), "convert", "-to", "yaml", "-o", yml, filepath.Join("testdata", "graph.json"))
		require.NoError(t, err)
		_, _, err = runCLI(t, context.Background(), "convert", "-to", "msgpack", "-o", mp, yml)
		require.NoError(t, err)
		out, _, err := runCLI(t, context.Background(), "convert", "-from", "msgpack", mp)
		require.NoError(t, err)
		assert.Equal(t, blurText, strings.TrimSpace(out))
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, _, err := runCLI(t, context.Background(), "convert", filepath.Join("testdata", "missing.json"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}

func TestRun_Fingerprint(t *testing.T) {
	t.Parallel()

	path := filepath.Join("testdata", "graph.json")
	out, _, err := runCLI(t, context.Background(), "fingerprint", path)
	require.NoError(t, err)

	id, err := uuid.Parse(strings.TrimSpace(out))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	g, err := config.Unmarshal(data, config.FormatJSON)
	require.NoError(t, err)
	want, err := config.Fingerprint(g)
	require.NoError(t, err)
	assert.Equal(t, want, id)
}

func TestRun_Gen(t *testing.T) {
	t.Parallel()

	target := t.TempDir()
	_, errOut, err := runCLI(t, context.Background(),
		"-log-format", "json",
		"gen",
		"-contracts", filepath.Join("testdata", "contracts.yaml"),
		"-target", target,
		"-package", "nodes",
		"-features", "registry,must",
	)
	require.NoError(t, err)
	assert.Contains(t, errOut, `"msg":"helpers generated"`)

	b, err := os.ReadFile(filepath.Join(target, "blur.go"))
	require.NoError(t, err)
	src := string(b)
	assert.Contains(t, src, "package nodes")
	assert.Contains(t, src, "func Blur(g *graph.Graph, in BlurInputs) (BlurOutputs, error) {")
	assert.Contains(t, src, "func MustBlur(")
	assert.FileExists(t, filepath.Join(target, "registry.go"))
}

func TestRun_GenInvalidContracts(t *testing.T) {
	t.Parallel()

	contracts := filepath.Join(t.TempDir(), "contracts.yaml")
	require.NoError(t, os.WriteFile(contracts, []byte("package: calculators\ncontracts: []\n"), 0o600))

	_, _, err := runCLI(t, context.Background(), "gen", "-contracts", contracts, "-target", t.TempDir())
	require.Error(t, err)
	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr))
	assert.Contains(t, err.Error(), "contracts")
}

func TestRun_GenWatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping watch test in short mode")
	}
	t.Parallel()

	dir := t.TempDir()
	target := t.TempDir()
	contracts := filepath.Join(dir, "contracts.yaml")
	base, err := os.ReadFile(filepath.Join("testdata", "contracts.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(contracts, base, 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, &bytes.Buffer{}, &bytes.Buffer{}, []string{"gen", "-watch", "-contracts", contracts, "-target", target})
	}()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(target, "blur.go"))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	extra := "  - kind: SharpenCalculator\n    inputs:\n      - {tag: IMAGE}\n    outputs:\n      - {tag: IMAGE}\n"
	require.NoError(t, os.WriteFile(contracts, append(base, extra...), 0o600))

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(target, "sharpen.go"))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	logger, err := newLogger("WARN", "json", buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
