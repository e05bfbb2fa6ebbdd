package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/wavelab/internal/boundary"
	"github.com/san-kum/wavelab/internal/grid"
	"github.com/san-kum/wavelab/internal/wave"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.CoordSystem != "cartesian" {
		t.Errorf("expected cartesian, got %s", cfg.CoordSystem)
	}
	if cfg.NX != 200 || cfg.NY != 200 {
		t.Errorf("expected 200x200, got %dx%d", cfg.NX, cfg.NY)
	}
	if cfg.Steps != 150 {
		t.Errorf("expected 150 steps, got %d", cfg.Steps)
	}

	wc, err := cfg.Wave()
	if err != nil {
		t.Fatal(err)
	}
	if wc.Boundary != boundary.Neumann || wc.Method != wave.FiniteDifference {
		t.Errorf("unexpected boundary/method %s/%s", wc.Boundary, wc.Method)
	}
	if wc.PulseWidth != 10 {
		t.Errorf("expected sigma 10, got %f", wc.PulseWidth)
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := DefaultConfig()
	cfg.Boundary = "periodic"
	cfg.Method = "fft"
	cfg.Probe = []int{3, 4}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Method != "fft" || got.Boundary != "periodic" {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if len(got.Probe) != 2 || got.Probe[1] != 4 {
		t.Errorf("probe not kept: %v", got.Probe)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("nx: 64\nboundary: dirichlet\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NX != 64 || cfg.NY != DefaultN {
		t.Errorf("expected 64x%d, got %dx%d", DefaultN, cfg.NX, cfg.NY)
	}
	if cfg.Steps != DefaultSteps {
		t.Errorf("default steps lost: %d", cfg.Steps)
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("nx: [1, 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestWave_Systems(t *testing.T) {
	cyl := &Config{CoordSystem: "cylindrical", NX: 10, NY: 16, DX: 0.1, WaveSpeed: 1, Boundary: "dirichlet", Method: "fdm", PulseWidth: 1}
	wc, err := cyl.Wave()
	if err != nil {
		t.Fatal(err)
	}
	if wc.System != grid.Cylindrical {
		t.Errorf("expected cylindrical, got %s", wc.System)
	}
	if math.Abs(wc.Spacing[1]-2*math.Pi/16) > 1e-15 {
		t.Errorf("expected closed angular spacing, got %f", wc.Spacing[1])
	}

	sph := &Config{CoordSystem: "spherical", NX: 30, NY: 99, DX: 0.1, DY: 5, WaveSpeed: 1, Boundary: "neumann", Method: "fdm", PulseWidth: 1}
	wc, err = sph.Wave()
	if err != nil {
		t.Fatal(err)
	}
	if len(wc.Resolution) != 1 || len(wc.Spacing) != 1 {
		t.Errorf("spherical should be 1D, got %v %v", wc.Resolution, wc.Spacing)
	}
}

func TestWave_BadNames(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"system", func(c *Config) { c.CoordSystem = "toroidal" }},
		{"boundary", func(c *Config) { c.Boundary = "absorbing" }},
		{"method", func(c *Config) { c.Method = "fem" }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if _, err := cfg.Wave(); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestProbeIndex(t *testing.T) {
	g, err := grid.Build(grid.Cartesian, []int{9, 7}, []float64{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	i, j, err := cfg.ProbeIndex(g)
	if err != nil || i != 4 || j != 3 {
		t.Errorf("expected midpoint (4,3), got (%d,%d) %v", i, j, err)
	}

	cfg.Probe = []int{9, 0}
	if _, _, err := cfg.ProbeIndex(g); err == nil {
		t.Error("expected out of range error")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("cartesian", "small")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.NX != 50 {
		t.Errorf("expected nx 50, got %d", cfg.NX)
	}

	cfg.NX = 1
	if Presets["cartesian"]["small"].NX != 50 {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("cartesian", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "small") != nil {
		t.Error("expected nil for nonexistent system")
	}
}

func TestPresetsBuild(t *testing.T) {
	for _, sys := range Systems() {
		for _, name := range ListPresets(sys) {
			wc, err := GetPreset(sys, name).Wave()
			if err != nil {
				t.Errorf("%s/%s: %v", sys, name, err)
				continue
			}
			if _, err := wave.New(wc); err != nil {
				t.Errorf("%s/%s: %v", sys, name, err)
			}
		}
	}
}

func TestListPresets(t *testing.T) {
	if len(ListPresets("cylindrical")) == 0 {
		t.Error("expected presets for cylindrical")
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent system")
	}
}
