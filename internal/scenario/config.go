// Package scenario builds complete creepers and drives them along scripted
// end point paths, collecting trajectories and metrics.
package scenario

import (
	"fmt"

	"github.com/san-kum/creepersim/internal/creeper"
	"github.com/san-kum/creepersim/internal/sim"
)

// ScaleChange resizes the cursor at a given time.
type ScaleChange struct {
	At   float64 `yaml:"at"`
	Size float64 `yaml:"size"`
}

// AudioConfig feeds a pulsing tone to the analyser and bounces the body
// with its loudness.
type AudioConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Frequency float64 `yaml:"frequency"`
	Amplitude float64 `yaml:"amplitude"`
	Period    float64 `yaml:"period"`
	Duty      float64 `yaml:"duty"`
	Gain      float64 `yaml:"gain"`
}

type Config struct {
	Name     string  `yaml:"name"`
	Path     string  `yaml:"path"`
	Speed    float64 `yaml:"speed"`
	Size     float64 `yaml:"size"`
	Legs     int     `yaml:"legs"`
	Groups   int     `yaml:"groups"`
	LegSpan  float64 `yaml:"leg_span"`
	Tail     int     `yaml:"tail"`
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`
	Scale    float64 `yaml:"scale"`
	Seed     int64   `yaml:"seed"`

	Creeper      creeper.Config    `yaml:"creeper"`
	Leg          creeper.LegConfig `yaml:"leg"`
	Audio        AudioConfig       `yaml:"audio"`
	ScaleChanges []ScaleChange     `yaml:"scale_changes"`
}

func DefaultConfig() Config {
	return Config{
		Name:     "default",
		Path:     "circle",
		Speed:    0.8,
		Size:     1.5,
		Legs:     6,
		Groups:   2,
		LegSpan:  0.25,
		Tail:     0,
		Dt:       1.0 / 60,
		Duration: 10,
		Scale:    1,
		Seed:     1,
		Creeper:  creeper.DefaultConfig(),
		Leg:      creeper.DefaultLegConfig(),
		Audio: AudioConfig{
			Frequency: 110,
			Amplitude: 0.8,
			Period:    0.5,
			Duty:      0.3,
			Gain:      0.08,
		},
	}
}

func (c Config) SimConfig() sim.Config {
	return sim.Config{Dt: c.Dt, Duration: c.Duration}
}

func (c Config) Validate() error {
	if _, err := lookupPath(c.Path); err != nil {
		return err
	}
	switch {
	case c.Speed <= 0:
		return fmt.Errorf("%w: speed must be positive", ErrInvalidConfig)
	case c.Size <= 0:
		return fmt.Errorf("%w: size must be positive", ErrInvalidConfig)
	case c.Legs < 1:
		return fmt.Errorf("%w: need at least one leg", ErrInvalidConfig)
	case c.Groups < 1 || c.Groups > c.Legs:
		return fmt.Errorf("%w: groups must be in [1, legs], got %d", ErrInvalidConfig, c.Groups)
	case c.LegSpan <= 0:
		return fmt.Errorf("%w: leg span must be positive", ErrInvalidConfig)
	case c.Tail < 0:
		return fmt.Errorf("%w: tail length must not be negative", ErrInvalidConfig)
	case c.Scale <= 0:
		return fmt.Errorf("%w: scale must be positive", ErrInvalidConfig)
	}
	if err := c.SimConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Creeper.Validate(); err != nil {
		return err
	}
	if err := c.Leg.Validate(); err != nil {
		return err
	}
	if c.Leg.TweenDuration >= c.Creeper.LegMoveIntervalTime && c.Creeper.LegMoveIntervalTime > 0 {
		return fmt.Errorf("%w: tween duration %v must stay below the move interval %v",
			ErrInvalidConfig, c.Leg.TweenDuration, c.Creeper.LegMoveIntervalTime)
	}
	return nil
}
