package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/wavelab/internal/boundary"
	"github.com/san-kum/wavelab/internal/grid"
	"github.com/san-kum/wavelab/internal/wave"
)

const (
	DefaultN          = 200
	DefaultSpacing    = 1.0
	DefaultWaveSpeed  = 1.0
	DefaultSteps      = 150
	DefaultPulseWidth = 10.0
	DefaultFrameEvery = 2
)

// Config is the on-disk form of a run. For cylindrical runs NX/DX describe
// the radius and NY/DY the angle; spherical runs ignore NY and DY.
type Config struct {
	CoordSystem string  `yaml:"coord_system"`
	NX          int     `yaml:"nx"`
	NY          int     `yaml:"ny"`
	DX          float64 `yaml:"dx"`
	DY          float64 `yaml:"dy"`
	WaveSpeed   float64 `yaml:"wave_speed"`
	Steps       int     `yaml:"steps"`
	Boundary    string  `yaml:"boundary"`
	Method      string  `yaml:"method"`
	PulseWidth  float64 `yaml:"pulse_width"`
	Courant     float64 `yaml:"courant,omitempty"`
	FrameEvery  int     `yaml:"frame_every"`
	Validate    bool    `yaml:"validate"`
	// Probe is the grid index recorded every step; empty means the midpoint.
	Probe []int `yaml:"probe,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		CoordSystem: grid.Cartesian.String(),
		NX:          DefaultN,
		NY:          DefaultN,
		DX:          DefaultSpacing,
		DY:          DefaultSpacing,
		WaveSpeed:   DefaultWaveSpeed,
		Steps:       DefaultSteps,
		Boundary:    boundary.Neumann.String(),
		Method:      wave.FiniteDifference.String(),
		PulseWidth:  DefaultPulseWidth,
		FrameEvery:  DefaultFrameEvery,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Wave converts the document into the integrator's configuration. A
// cylindrical run with no angular spacing closes the circle: dy = 2*pi/ny.
func (c *Config) Wave() (wave.Config, error) {
	sys, err := grid.ParseCoordSystem(c.CoordSystem)
	if err != nil {
		return wave.Config{}, err
	}
	bc, err := boundary.ParsePolicy(c.Boundary)
	if err != nil {
		return wave.Config{}, err
	}
	m, err := wave.ParseMethod(c.Method)
	if err != nil {
		return wave.Config{}, err
	}

	wc := wave.Config{
		System:     sys,
		WaveSpeed:  c.WaveSpeed,
		Steps:      c.Steps,
		Boundary:   bc,
		Method:     m,
		PulseWidth: c.PulseWidth,
		Courant:    c.Courant,
		FrameEvery: c.FrameEvery,
		Validate:   c.Validate,
	}
	switch sys {
	case grid.SphericalRadial:
		wc.Resolution = []int{c.NX}
		wc.Spacing = []float64{c.DX}
	case grid.Cylindrical:
		dphi := c.DY
		if dphi == 0 && c.NY > 0 {
			dphi = 2 * math.Pi / float64(c.NY)
		}
		wc.Resolution = []int{c.NX, c.NY}
		wc.Spacing = []float64{c.DX, dphi}
	default:
		wc.Resolution = []int{c.NX, c.NY}
		wc.Spacing = []float64{c.DX, c.DY}
	}
	return wc, nil
}

// ProbeIndex returns the recorded grid index, defaulting to the midpoint
// of each axis.
func (c *Config) ProbeIndex(g *grid.Grid) (int, int, error) {
	rows, cols := g.Shape()
	i, j := rows/2, cols/2
	switch len(c.Probe) {
	case 0:
	case 1:
		i, j = c.Probe[0], 0
	default:
		i, j = c.Probe[0], c.Probe[1]
	}
	if i < 0 || i >= rows || j < 0 || j >= cols {
		return 0, 0, fmt.Errorf("probe (%d,%d) outside %dx%d grid", i, j, rows, cols)
	}
	return i, j, nil
}
