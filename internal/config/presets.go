package config

import "sort"

func releaseAt(t float64) *float64 { return &t }

var Presets = map[string]map[string]*Config{
	"diffusion": {
		"spike": {
			Experiment: "diffusion", Method: "euler", Dt: 0.005, Steps: 2000,
			Shape: []int{128}, Extent: 10, RecordEvery: 20,
			Params: Params{Mass: 1, Diffusivity: 1, Sigma: 0.5},
		},
		"plate": {
			Experiment: "diffusion", Method: "rk4", Dt: 0.01, Steps: 500,
			Shape: []int{48, 48}, Extent: 8, RecordEvery: 10,
			Params: Params{Mass: 1, Diffusivity: 0.5, Sigma: 1},
		},
	},
	"wavepacket": {
		"free": {
			Experiment: "wavepacket", Method: "rk4", Dt: 0.01, Steps: 1000,
			Shape: []int{256}, Extent: 20, RecordEvery: 10,
			Params: Params{Mass: 1, Sigma: 1, Momentum: 2},
		},
		"still": {
			Experiment: "wavepacket", Method: "rk4", Dt: 0.01, Steps: 600,
			Shape: []int{256}, Extent: 20, RecordEvery: 10,
			Params: Params{Mass: 1, Sigma: 1},
		},
		"plane": {
			Experiment: "wavepacket", Method: "rk4", Dt: 0.01, Steps: 400,
			Shape: []int{64, 64}, Extent: 12, RecordEvery: 10,
			Params: Params{Mass: 1, Sigma: 1.5, Momentum: 1},
		},
	},
	"gpe": {
		"trap": {
			Experiment: "gpe", Method: "rk4", Dt: 0.01, Steps: 2000, T0: -10,
			Shape: []int{32, 32, 32}, Extent: 6, RecordEvery: 50, CheckFinite: true,
			Params: Params{
				Mass: 1, Coupling: 1.881, Cutoff: 10, Sigma: 1,
				Trap: []float64{1, 5, 1}, ReleaseTime: releaseAt(0),
			},
		},
		"lite": {
			Experiment: "gpe", Method: "rk4", Dt: 0.01, Steps: 1000, T0: -5,
			Shape: []int{64, 64}, Extent: 6, RecordEvery: 20, CheckFinite: true,
			Params: Params{
				Mass: 1, Coupling: 1.881, Cutoff: 10, Sigma: 1,
				Trap: []float64{1, 2}, ReleaseTime: releaseAt(0),
			},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(experiment, preset string) *Config {
	experimentPresets, ok := Presets[experiment]
	if !ok {
		return nil
	}
	cfg, ok := experimentPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(experiment string) []string {
	experimentPresets, ok := Presets[experiment]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(experimentPresets))
	for name := range experimentPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Experiments lists the experiments that have presets.
func Experiments() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
