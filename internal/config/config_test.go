package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/creepersim/internal/liquid"
	"github.com/san-kum/creepersim/internal/scenario"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Scenario.Path != "circle" {
		t.Errorf("expected path circle, got %s", cfg.Scenario.Path)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected info logging, got %s", cfg.Logging.Level)
	}
	if cfg.Settings.Persist {
		t.Error("settings should stay in memory by default")
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg, ok := GetPreset(name)
			if !ok {
				t.Fatal("listed preset not found")
			}
			if cfg.Name != name {
				t.Errorf("preset name = %q", cfg.Name)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset does not validate: %v", err)
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg, ok := GetPreset("spider")
	if !ok {
		t.Fatal("expected preset")
	}
	if cfg.Legs != 8 || cfg.Groups != 2 {
		t.Errorf("expected 8 legs in 2 groups, got %d in %d", cfg.Legs, cfg.Groups)
	}
	if _, ok := GetPreset("nonexistent"); ok {
		t.Error("expected no preset")
	}
}

func TestPresetsDoNotLeak(t *testing.T) {
	GetPreset("crab")
	if !scenario.DefaultConfig().Creeper.SyncRotation {
		t.Error("applying a preset changed the defaults")
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creepersim.yaml")

	cfg := DefaultConfig()
	cfg.Scenario.Legs = 8
	cfg.ForceField.Shape = liquid.Cylinder
	cfg.ForceField.Strength = -0.5
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Scenario.Legs != 8 || got.ForceField.Shape != liquid.Cylinder || got.ForceField.Strength != -0.5 {
		t.Errorf("round trip lost values: %+v", got)
	}
	if got.Liquid.Particles != liquid.DefaultConfig().Particles {
		t.Errorf("inline liquid config lost: %+v", got.Liquid)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := "scenario:\n  legs: 4\nforce_field:\n  shape: cube\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scenario.Legs != 4 || cfg.Scenario.Groups != 2 {
		t.Errorf("unexpected legs/groups %d/%d", cfg.Scenario.Legs, cfg.Scenario.Groups)
	}
	if cfg.ForceField.Shape != liquid.Cube || cfg.ForceField.Strength != 1 {
		t.Errorf("unexpected force field %+v", cfg.ForceField)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"unknown path", "scenario:\n  path: spiral\n", scenario.ErrUnknownPath},
		{"strength out of range", "force_field:\n  strength: 3\n", liquid.ErrInvalidConfig},
		{"unknown shape", "force_field:\n  shape: torus\n", liquid.ErrUnknownShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
