// Package config loads the creepersim yaml file: the scenario to run plus
// logging, settings storage, liquid and force field sections.
package config

import (
	"fmt"
	"os"

	"github.com/san-kum/creepersim/internal/liquid"
	"github.com/san-kum/creepersim/internal/scenario"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDataDir  = "runs"
	DefaultAppName  = "creepersim"
	DefaultLogLevel = "info"
)

type Config struct {
	Scenario   scenario.Config         `yaml:"scenario"`
	Logging    LoggingConfig           `yaml:"logging"`
	Settings   SettingsConfig          `yaml:"settings"`
	Liquid     LiquidConfig            `yaml:"liquid"`
	ForceField liquid.ForceFieldConfig `yaml:"force_field"`
	DataDir    string                  `yaml:"data_dir"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// SettingsConfig controls where cursor settings persist. With Persist off
// the settings manager runs in memory only.
type SettingsConfig struct {
	Persist bool   `yaml:"persist"`
	AppName string `yaml:"app_name"`
}

// LiquidConfig is the fluid plus where its force field sits.
type LiquidConfig struct {
	liquid.Config `yaml:",inline"`
	Duration      float64 `yaml:"duration"`
	Dt            float64 `yaml:"dt"`
	FieldX        float64 `yaml:"field_x"`
	FieldY        float64 `yaml:"field_y"`
	FieldRadius   float64 `yaml:"field_radius"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario: scenario.DefaultConfig(),
		Logging:  LoggingConfig{Level: DefaultLogLevel},
		Settings: SettingsConfig{AppName: DefaultAppName},
		Liquid: LiquidConfig{
			Config:      liquid.DefaultConfig(),
			Duration:    5,
			Dt:          1.0 / 60,
			FieldX:      30,
			FieldY:      8,
			FieldRadius: 12,
		},
		ForceField: liquid.DefaultForceFieldConfig(),
		DataDir:    DefaultDataDir,
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
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

func (c *Config) Validate() error {
	if err := c.Scenario.Validate(); err != nil {
		return err
	}
	if err := c.Liquid.Config.Validate(); err != nil {
		return err
	}
	if c.Liquid.Dt <= 0 || c.Liquid.Duration <= 0 {
		return fmt.Errorf("%w: liquid dt and duration must be positive", liquid.ErrInvalidConfig)
	}
	if c.Liquid.FieldRadius <= 0 {
		return fmt.Errorf("%w: field radius must be positive", liquid.ErrInvalidConfig)
	}
	return c.ForceField.Validate()
}
