package creeper

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Config drives body following and leg group stepping. It can be swapped at
// runtime with Controller.SetConfig.
type Config struct {
	// Lag filter coefficient for the body chasing the ghost anchor.
	BodyMoveSpeed float64 `yaml:"body_move_speed"`
	// Linear speed (units/sec) of the ghost anchor chasing the end point.
	GhostBodyMoveSpeed float64 `yaml:"ghost_body_move_speed"`
	// Spherical interpolation rate of the ghost rotation.
	GhostBodyRotateSpeed float64 `yaml:"ghost_body_rotate_speed"`
	// Minimum seconds between two group steps. Keep it above every leg's tween duration.
	LegMoveIntervalTime float64 `yaml:"leg_move_interval_time"`
	// Seconds of stillness before all legs are realigned; <= 0 disables realignment.
	LegRealignDelayTime float64 `yaml:"leg_realign_delay_time"`

	// SyncRotation copies the end point rotation onto the ghost. When false the
	// ghost looks at the end point instead (experimental: flips at close range).
	SyncRotation bool       `yaml:"sync_rotation"`
	LocalBodyUp  mgl64.Vec3 `yaml:"local_body_up"`
}

func DefaultConfig() Config {
	return Config{
		BodyMoveSpeed:        3,
		GhostBodyMoveSpeed:   1.3,
		GhostBodyRotateSpeed: 1,
		LegMoveIntervalTime:  0.1,
		LegRealignDelayTime:  5,
		SyncRotation:         true,
		LocalBodyUp:          mgl64.Vec3{0, 1, 0},
	}
}

func (c Config) Validate() error {
	checks := []struct {
		field string
		value float64
		min   float64
		max   float64
	}{
		{"body_move_speed", c.BodyMoveSpeed, 0, 1e6},
		{"ghost_body_move_speed", c.GhostBodyMoveSpeed, 0, 1e6},
		{"ghost_body_rotate_speed", c.GhostBodyRotateSpeed, 0, 1e6},
		{"leg_move_interval_time", c.LegMoveIntervalTime, 0, 1},
		{"leg_realign_delay_time", c.LegRealignDelayTime, -1e6, 120},
	}
	for _, chk := range checks {
		if math.IsNaN(chk.value) || chk.value < chk.min || chk.value > chk.max {
			return configErr(chk.field, fmt.Errorf("%w: %v not in [%v, %v]", ErrParameterBounds, chk.value, chk.min, chk.max))
		}
	}
	if !c.SyncRotation && c.LocalBodyUp.Len() == 0 {
		return configErr("local_body_up", fmt.Errorf("%w: zero up vector in look-at mode", ErrParameterBounds))
	}
	return nil
}

// LegConfig tunes a single LegController.
type LegConfig struct {
	// Distance between foot and target (scaled) above which the leg needs to move.
	MoveThreshold float64 `yaml:"move_threshold"`
	// Seconds a step animation takes.
	TweenDuration float64 `yaml:"tween_duration"`
	// Peak lift of the foot during a step (scaled).
	StepHeight float64 `yaml:"step_height"`
}

func DefaultLegConfig() LegConfig {
	return LegConfig{
		MoveThreshold: 0.1,
		TweenDuration: 0.08,
		StepHeight:    0.05,
	}
}

func (c LegConfig) Validate() error {
	if math.IsNaN(c.MoveThreshold) || c.MoveThreshold < 0 {
		return configErr("move_threshold", ErrParameterBounds)
	}
	if math.IsNaN(c.TweenDuration) || c.TweenDuration < 0 {
		return configErr("tween_duration", ErrParameterBounds)
	}
	if math.IsNaN(c.StepHeight) || c.StepHeight < 0 {
		return configErr("step_height", ErrParameterBounds)
	}
	return nil
}
