package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/wavelab/internal/export"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func runID(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if id, ok := strings.CutPrefix(line, "run id: "); ok {
			return strings.TrimSpace(id)
		}
	}
	t.Fatalf("no run id in output:\n%s", out)
	return ""
}

func TestRunListAnalyzeExport(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "--data", dir, "run", "--preset", "small", "--steps", "24")
	require.NoError(t, err)
	id := runID(t, out)
	assert.Contains(t, out, "steps: 24")
	assert.Contains(t, out, "energy_drift:")
	assert.Contains(t, out, "probe:")

	out, err = execute(t, "--data", dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "50x50")
	assert.Contains(t, out, "neumann")

	out, err = execute(t, "--data", dir, "plot", id)
	require.NoError(t, err)
	assert.Contains(t, out, "final field along axis 0")
	assert.Contains(t, out, "probe u[25 25] vs step")

	out, err = execute(t, "--data", dir, "analyze", id)
	require.NoError(t, err)
	assert.Contains(t, out, "dominant frequency")
	assert.Contains(t, out, "arrival (|u| >= 0.1): t = ")

	out, err = execute(t, "--data", dir, "export-csv", id)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "step,time,u", lines[0])
	assert.Len(t, lines, 25)

	jsonPath := filepath.Join(dir, "run.json")
	svgPath := filepath.Join(dir, "run.svg")
	_, err = execute(t, "--data", dir, "export-json", id, "--out", jsonPath, "--svg", svgPath)
	require.NoError(t, err)

	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var data export.ExportData
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Equal(t, id, data.ID)
	assert.Len(t, data.Field, 50)
	require.NotNil(t, data.Probe)
	assert.Len(t, data.Probe.Values, 24)

	svg, err := os.ReadFile(svgPath)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg xmlns")

	series, err := os.ReadFile(filepath.Join(dir, "run-probe.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(series), "<path")
}

func TestRunWritesGIF(t *testing.T) {
	dir := t.TempDir()
	gif := filepath.Join(dir, "out.gif")

	out, err := execute(t, "--data", dir, "run", "--preset", "small", "--steps", "9", "--frame-every", "3", "--gif", gif)
	require.NoError(t, err)
	assert.Contains(t, out, "(3 frames)")

	info, err := os.Stat(gif)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRunRejectsBadConfig(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "--data", dir, "run", "--preset", "nope")
	assert.ErrorContains(t, err, "unknown preset")

	_, err = execute(t, "--data", dir, "run", "--nx", "16", "--ny", "16", "--method", "fft", "--boundary", "neumann")
	assert.ErrorContains(t, err, "spectral method requires periodic boundary")

	_, err = execute(t, "--data", dir, "run", "--preset", "small", "--config", "x.yaml")
	assert.ErrorContains(t, err, "not both")

	_, err = execute(t, "--data", dir, "plot", "missing")
	assert.Error(t, err)
}

func TestBuildConfigLayering(t *testing.T) {
	root := newRootCmd()
	runCmd, _, err := root.Find([]string{"run"})
	require.NoError(t, err)
	require.NoError(t, runCmd.ParseFlags([]string{"--nx", "32", "--ny", "48", "--boundary", "dirichlet"}))

	cfg, err := buildConfig(runCmd, []string{"cyl"})
	require.NoError(t, err)
	assert.Equal(t, "cylindrical", cfg.CoordSystem)
	assert.Equal(t, 32, cfg.NX)
	assert.Equal(t, 48, cfg.NY)
	assert.Equal(t, "dirichlet", cfg.Boundary)
	assert.Zero(t, cfg.DY)
	assert.Equal(t, "fdm", cfg.Method)

	wc, err := cfg.Wave()
	require.NoError(t, err)
	assert.InDelta(t, 2*3.141592653589793/48, wc.Spacing[1], 1e-15)
}

func TestBuildConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nx: 20\nny: 30\nsteps: 7\nboundary: periodic\n"), 0644))

	root := newRootCmd()
	runCmd, _, err := root.Find([]string{"run"})
	require.NoError(t, err)
	require.NoError(t, runCmd.ParseFlags([]string{"--config", path, "--steps", "11"}))

	cfg, err := buildConfig(runCmd, nil)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.NX)
	assert.Equal(t, 30, cfg.NY)
	assert.Equal(t, 11, cfg.Steps)
	assert.Equal(t, "periodic", cfg.Boundary)
}

func TestPresets(t *testing.T) {
	out, err := execute(t, "presets")
	require.NoError(t, err)
	assert.Contains(t, out, "presets for cartesian:")
	assert.Contains(t, out, "  spectral")
	assert.Contains(t, out, "presets for spherical_radial:")

	out, err = execute(t, "presets", "cylindrical")
	require.NoError(t, err)
	assert.Equal(t, "presets for cylindrical:\n  disk\n  drum\n", out)
}

func TestCompareMethods(t *testing.T) {
	out, err := execute(t, "compare", "--nx", "32", "--ny", "32", "--steps", "20", "--sigma", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "fdm")
	assert.Contains(t, out, "fft")
	assert.Contains(t, out, "max |fdm - fft|:")
}
