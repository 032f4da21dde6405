package config

import "sort"

// Presets are named, ready-to-run configurations. The figure-eight and
// Lagrange entries are periodic regression fixtures; binary reduces to a
// Kepler two-body orbit; freefall is the chaotic showcase; solar uses
// AU/day/solar-mass units with the Gaussian gravitational constant.
var presets = map[string]*Config{
	// Chenciner-Montgomery figure-eight choreography, period ~6.3259.
	"figure-eight": {
		Bodies: []BodyConfig{
			{Mass: 1, Pos: [2]float64{0.97000436, -0.24308753}, Vel: [2]float64{0.46620368, 0.43236573}},
			{Mass: 1, Pos: [2]float64{-0.97000436, 0.24308753}, Vel: [2]float64{0.46620368, 0.43236573}},
			{Mass: 1, Pos: [2]float64{0, 0}, Vel: [2]float64{-0.93240737, -0.86473146}},
		},
		G:          1,
		Dt:         0.001,
		Duration:   6.32591398,
		Integrator: "rk4",
	},
	// Equal masses on an equilateral triangle, rigidly rotating with
	// angular velocity 3^(-1/4); period 2*pi*3^(1/4) ~ 8.2691.
	"lagrange": {
		Bodies: []BodyConfig{
			{Mass: 1, Pos: [2]float64{0, 1}, Vel: [2]float64{-0.75983569, 0}},
			{Mass: 1, Pos: [2]float64{-0.86602540, -0.5}, Vel: [2]float64{0.37991784, -0.65803701}},
			{Mass: 1, Pos: [2]float64{0.86602540, -0.5}, Vel: [2]float64{0.37991784, 0.65803701}},
		},
		G:          1,
		Dt:         0.001,
		Duration:   8.26913690,
		Integrator: "rk4",
	},
	// Circular equal-mass binary with a negligible third body far out:
	// the two-body reduction check. Orbital period 4*pi.
	"binary": {
		Bodies: []BodyConfig{
			{Mass: 1, Pos: [2]float64{-1, 0}, Vel: [2]float64{0, -0.5}},
			{Mass: 1, Pos: [2]float64{1, 0}, Vel: [2]float64{0, 0.5}},
			{Mass: 1e-9, Pos: [2]float64{50, 50}, Vel: [2]float64{0, 0}},
		},
		G:          1,
		Dt:         0.001,
		Duration:   12.56637061,
		Integrator: "rk4",
	},
	// Free-fall collapse from a scalene triangle: strongly chaotic,
	// with repeated close encounters bounded by the softening length.
	"freefall": {
		Bodies: []BodyConfig{
			{Mass: 1, Pos: [2]float64{0, 0}, Vel: [2]float64{0, 0}},
			{Mass: 1, Pos: [2]float64{1.5, 0}, Vel: [2]float64{0, 0}},
			{Mass: 1, Pos: [2]float64{0.75, 1.3}, Vel: [2]float64{0, 0}},
		},
		G:              1,
		Softening:      0.05,
		Dt:             0.005,
		Duration:       20,
		Integrator:     "rk4",
		WarnSeparation: 0.1,
	},
	// A star and two light companions in AU/day units. G is the squared
	// Gaussian gravitational constant; one step is one day.
	"solar": {
		Bodies: []BodyConfig{
			{Mass: 1, Pos: [2]float64{0, 0}, Vel: [2]float64{0, 0.01720210}},
			{Mass: 0.1, Pos: [2]float64{1.5, 0}, Vel: [2]float64{0, -0.05160630}},
			{Mass: 0.05, Pos: [2]float64{0.75, 1.3}, Vel: [2]float64{-0.04300525, 0.02580315}},
		},
		G:              2.95986e-4,
		Softening:      1e-4,
		Dt:             1,
		Duration:       3650,
		Integrator:     "rk4",
		Recenter:       true,
		WarnSeparation: 0.05,
	},
}

// GetPreset returns a copy of the named preset, or nil if unknown. The
// copy is safe to modify.
func GetPreset(name string) *Config {
	src, ok := presets[name]
	if !ok {
		return nil
	}
	cfg := *src
	cfg.Bodies = make([]BodyConfig, len(src.Bodies))
	copy(cfg.Bodies, src.Bodies)
	return &cfg
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
