package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Listen != "127.0.0.1:5000" {
		t.Errorf("expected default listen address, got %s", cfg.Listen)
	}
	if cfg.Sim.Dt != 0.02 {
		t.Errorf("expected dt 0.02, got %f", cfg.Sim.Dt)
	}
	if cfg.Body.Mass != 1000 {
		t.Errorf("expected mass 1000, got %f", cfg.Body.Mass)
	}
	if cfg.Lander.SensorOffset.Y != -2 {
		t.Errorf("expected sensor offset -2, got %f", cfg.Lander.SensorOffset.Y)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	doc := `
listen: 0.0.0.0:6000
sim:
  dt: 0.01
  tick_interval: 5ms
body:
  gravity: 1.62
target:
  x: 4
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Listen != "0.0.0.0:6000" || cfg.Sim.Dt != 0.01 || cfg.Body.Gravity != 1.62 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Sim.TickInterval != 5*time.Millisecond {
		t.Errorf("expected 5ms tick, got %s", cfg.Sim.TickInterval)
	}
	if cfg.Sim.Integrator != "rk4" || cfg.Body.Mass != 1000 {
		t.Error("defaults lost for keys missing from the file")
	}
	if cfg.LanderParams().Target.X != 4 {
		t.Errorf("target not carried into lander params")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	cfg := GetPreset("lunar")
	cfg.Record.Enabled = true

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Sim.Dt = 0 }},
		{"unknown integrator", func(c *Config) { c.Sim.Integrator = "leapfrog" }},
		{"negative mass", func(c *Config) { c.Body.Mass = -1 }},
		{"flat inertia", func(c *Config) { c.Body.Inertia.Y = 0 }},
		{"empty listen", func(c *Config) { c.Listen = "" }},
		{"negative thrust", func(c *Config) { c.Lander.ThrustPower = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("lunar")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Body.Gravity != 1.62 {
		t.Errorf("expected gravity 1.62, got %f", cfg.Body.Gravity)
	}
	if GetPreset("lunar") == cfg {
		t.Error("presets must return a fresh config")
	}
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValid(t *testing.T) {
	names := ListPresets()
	if len(names) != 4 {
		t.Errorf("expected 4 presets, got %v", names)
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestNewLander(t *testing.T) {
	cfg := GetPreset("heavy")
	lander, err := cfg.NewLander()
	if err != nil {
		t.Fatalf("new lander: %v", err)
	}
	if lander.Body().Mass != 3000 {
		t.Errorf("expected mass 3000, got %f", lander.Body().Mass)
	}

	cfg.Sim.Integrator = "nope"
	if _, err := cfg.NewLander(); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
