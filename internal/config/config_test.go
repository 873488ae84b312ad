package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Experiment != "diffusion" {
		t.Errorf("expected experiment diffusion, got %s", cfg.Experiment)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("gpe", "trap")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if len(cfg.Shape) != 3 {
		t.Errorf("expected rank 3, got %v", cfg.Shape)
	}
	if cfg.Params.ReleaseTime == nil || *cfg.Params.ReleaseTime != 0 {
		t.Errorf("expected release at t=0, got %v", cfg.Params.ReleaseTime)
	}
}

func TestGetPreset_ReturnsCopy(t *testing.T) {
	cfg := GetPreset("gpe", "trap")
	cfg.Shape[0] = 2
	cfg.Params.Trap[1] = 100
	*cfg.Params.ReleaseTime = 42

	fresh := GetPreset("gpe", "trap")
	if fresh.Shape[0] != 32 || fresh.Params.Trap[1] != 5 || *fresh.Params.ReleaseTime != 0 {
		t.Error("mutating a preset copy leaked into the table")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("wavepacket", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "free"); cfg != nil {
		t.Error("expected nil for nonexistent experiment")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("wavepacket")
	if len(presets) != 3 || presets[0] != "free" {
		t.Errorf("expected sorted wavepacket presets, got %v", presets)
	}
	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent experiment")
	}
}

func TestAllPresetsValidate(t *testing.T) {
	for _, exp := range Experiments() {
		for _, name := range ListPresets(exp) {
			cfg := GetPreset(exp, name)
			if cfg.Experiment != exp {
				t.Errorf("%s/%s: experiment field is %q", exp, name, cfg.Experiment)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", exp, name, err)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty experiment", func(c *Config) { c.Experiment = "" }},
		{"unknown method", func(c *Config) { c.Method = "verlet" }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative steps", func(c *Config) { c.Steps = -1 }},
		{"short axis", func(c *Config) { c.Shape = []int{1, 8} }},
		{"no shape", func(c *Config) { c.Shape = nil }},
		{"uneven shape", func(c *Config) { c.Shape = []int{16, 8} }},
		{"zero extent", func(c *Config) { c.Extent = 0 }},
		{"zero record", func(c *Config) { c.RecordEvery = 0 }},
		{"trap rank", func(c *Config) { c.Params.Trap = []float64{1, 2} }},
		{"zero mass", func(c *Config) { c.Params.Mass = 0 }},
		{"zero sigma", func(c *Config) { c.Params.Sigma = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestNegativeDtIsAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dt = -0.01
	if err := cfg.Validate(); err != nil {
		t.Errorf("backward integration should validate: %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := GetPreset("gpe", "lite")
	cfg.Steps = 7

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Steps != 7 || got.Experiment != "gpe" || len(got.Params.Trap) != 2 {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if got.Params.ReleaseTime == nil {
		t.Error("release_time was dropped")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("experiment: wavepacket\nsteps: 20\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Experiment != "wavepacket" || cfg.Steps != 20 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Dt != DefaultDt || cfg.Params.Mass != DefaultMass {
		t.Error("defaults not kept for missing keys")
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("steps: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSpacingAndDuration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shape = []int{11}
	cfg.Extent = 5
	cfg.Steps = 100
	cfg.Dt = 0.5

	if got := cfg.Spacing(0); got != 1 {
		t.Errorf("expected spacing 1, got %g", got)
	}
	if got := cfg.Duration(); got != 50 {
		t.Errorf("expected duration 50, got %g", got)
	}
}

func TestLoadOver_Preset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	if err := os.WriteFile(path, []byte("steps: 5\nparams:\n  coupling: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	base := GetPreset("gpe", "trap")
	cfg, err := LoadOver(path, base)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Steps != 5 || cfg.Params.Coupling != 3 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Experiment != "gpe" || len(cfg.Shape) != 3 || cfg.Params.Cutoff != 10 {
		t.Errorf("preset values lost: %+v", cfg)
	}
	if base.Steps != 2000 {
		t.Error("base config was modified")
	}
}

func TestSetParam(t *testing.T) {
	cfg := DefaultConfig()
	for i, name := range ParamNames() {
		if err := cfg.SetParam(name, float64(i+1)); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	if cfg.Dt != 1 || cfg.Params.Coupling != 5 || cfg.Params.Momentum != 9 {
		t.Errorf("values not assigned: %+v", cfg)
	}
	if cfg.Params.ReleaseTime == nil || *cfg.Params.ReleaseTime != 10 {
		t.Errorf("release_time not assigned: %v", cfg.Params.ReleaseTime)
	}

	if err := cfg.SetParam("gravity", 9.81); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoad_ValidateKeySetsCheckFinite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finite.yaml")
	if err := os.WriteFile(path, []byte("validate: true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.CheckFinite {
		t.Error("validate: true should enable the finite check")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("config should still validate: %v", err)
	}
}
