package config

import (
	"math"
	"sort"
)

var Presets = map[string]map[string]*Config{
	"cartesian": {
		"default": {
			CoordSystem: "cartesian", NX: 200, NY: 200, DX: 1, DY: 1, WaveSpeed: 1,
			Steps: 150, Boundary: "neumann", Method: "fdm", PulseWidth: 10, FrameEvery: 2,
		},
		"dirichlet": {
			CoordSystem: "cartesian", NX: 200, NY: 200, DX: 1, DY: 1, WaveSpeed: 1,
			Steps: 300, Boundary: "dirichlet", Method: "fdm", PulseWidth: 10, FrameEvery: 2,
		},
		"periodic": {
			CoordSystem: "cartesian", NX: 128, NY: 128, DX: 1, DY: 1, WaveSpeed: 1,
			Steps: 300, Boundary: "periodic", Method: "fdm", PulseWidth: 8, FrameEvery: 2,
		},
		"spectral": {
			CoordSystem: "cartesian", NX: 128, NY: 128, DX: 1, DY: 1, WaveSpeed: 1,
			Steps: 300, Boundary: "periodic", Method: "fft", PulseWidth: 8, FrameEvery: 2,
		},
		"small": {
			CoordSystem: "cartesian", NX: 50, NY: 50, DX: 1, DY: 1, WaveSpeed: 1,
			Steps: 100, Boundary: "neumann", Method: "fdm", PulseWidth: 4, FrameEvery: 2,
			Validate: true,
		},
	},
	"cylindrical": {
		"disk": {
			CoordSystem: "cylindrical", NX: 60, NY: 64, DX: 0.1, DY: 2 * math.Pi / 64, WaveSpeed: 1,
			Steps: 200, Boundary: "dirichlet", Method: "fdm", PulseWidth: 0.5, FrameEvery: 2,
		},
		"drum": {
			CoordSystem: "cylindrical", NX: 40, NY: 32, DX: 0.25, DY: 2 * math.Pi / 32, WaveSpeed: 1,
			Steps: 300, Boundary: "dirichlet", Method: "fdm", PulseWidth: 1, FrameEvery: 4,
		},
	},
	"spherical_radial": {
		"shell": {
			CoordSystem: "spherical_radial", NX: 200, DX: 0.05, WaveSpeed: 1,
			Steps: 400, Boundary: "neumann", Method: "fdm", PulseWidth: 0.4, FrameEvery: 4,
		},
		"absorbing": {
			CoordSystem: "spherical_radial", NX: 200, DX: 0.05, WaveSpeed: 1,
			Steps: 400, Boundary: "dirichlet", Method: "fdm", PulseWidth: 0.4, FrameEvery: 4,
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(system, preset string) *Config {
	systemPresets, ok := Presets[system]
	if !ok {
		return nil
	}
	cfg, ok := systemPresets[preset]
	if !ok {
		return nil
	}
	out := *cfg
	out.Probe = append([]int(nil), cfg.Probe...)
	return &out
}

func ListPresets(system string) []string {
	systemPresets, ok := Presets[system]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(systemPresets))
	for name := range systemPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Systems() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
