package creeper

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/creepersim/internal/pose"
	"github.com/san-kum/creepersim/internal/sim"
)

func newTestLeg(t *testing.T, footAt mgl64.Vec3, cfg LegConfig) (*LegController, *pose.Arena) {
	t.Helper()
	a := pose.NewArena()
	target, _ := a.Add("target", pose.None, mgl64.Vec3{}, mgl64.QuatIdent())
	foot, _ := a.Add("foot", pose.None, footAt, mgl64.QuatIdent())
	leg, err := NewLegController("leg", a, foot, target, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return leg, a
}

func TestLegNeedsMoveThreshold(t *testing.T) {
	tests := []struct {
		name  string
		foot  mgl64.Vec3
		scale float64
		want  bool
	}{
		{"inside threshold", mgl64.Vec3{0.05, 0, 0}, 1, false},
		{"outside threshold", mgl64.Vec3{0.2, 0, 0}, 1, true},
		{"scaled threshold", mgl64.Vec3{0.2, 0, 0}, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leg, _ := newTestLeg(t, tt.foot, DefaultLegConfig())
			leg.Update(sim.Frame{Scale: tt.scale})
			if got := leg.NeedsMove(); got != tt.want {
				t.Errorf("NeedsMove() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLegTweenReachesTarget(t *testing.T) {
	leg, a := newTestLeg(t, mgl64.Vec3{1, 0, 0}, DefaultLegConfig())

	leg.TriggerMoveAnimation(false)
	if !leg.Moving() {
		t.Fatal("expected step animation to start")
	}

	peak := 0.0
	for i := 0; i < 10 && leg.Moving(); i++ {
		leg.Update(sim.Frame{Dt: 0.01, Scale: 1})
		if y := a.WorldPosition(leg.Foot())[1]; y > peak {
			peak = y
		}
	}

	if leg.Moving() {
		t.Fatal("tween did not finish within its duration")
	}
	if d := leg.CurrentDistance(); d != 0 {
		t.Errorf("foot should land on target, distance %v", d)
	}
	if peak <= 0 || peak > DefaultLegConfig().StepHeight+1e-9 {
		t.Errorf("expected arced step up to step height, peak %v", peak)
	}
	if leg.Steps() != 1 {
		t.Errorf("expected 1 step, got %d", leg.Steps())
	}
}

func TestLegIgnoresUnforcedTriggerWhenPlanted(t *testing.T) {
	leg, _ := newTestLeg(t, mgl64.Vec3{0.01, 0, 0}, DefaultLegConfig())

	leg.TriggerMoveAnimation(false)
	if leg.Moving() {
		t.Error("planted leg should ignore an unforced trigger")
	}

	leg.TriggerMoveAnimation(true)
	if !leg.Moving() {
		t.Error("forced trigger must start a step")
	}
}

func TestLegTriggerPreemptsInFlightMove(t *testing.T) {
	leg, a := newTestLeg(t, mgl64.Vec3{1, 0, 0}, DefaultLegConfig())

	leg.TriggerMoveAnimation(true)
	leg.Update(sim.Frame{Dt: 0.04, Scale: 1})
	mid := a.WorldPosition(leg.Foot())

	leg.TriggerMoveAnimation(true)
	if leg.Steps() != 2 {
		t.Fatalf("expected restart, steps %d", leg.Steps())
	}
	leg.Update(sim.Frame{Dt: 0.001, Scale: 1})
	now := a.WorldPosition(leg.Foot())
	if now.Sub(mid).Len() > 0.01 {
		t.Errorf("restarted step should begin from the current foot, moved %v", now.Sub(mid).Len())
	}
}

func TestLegZeroDurationFinishesImmediately(t *testing.T) {
	cfg := DefaultLegConfig()
	cfg.TweenDuration = 0
	leg, _ := newTestLeg(t, mgl64.Vec3{1, 1, 0}, cfg)

	leg.TriggerMoveAnimation(false)
	if leg.Moving() || math.Abs(leg.CurrentDistance()) > 1e-12 {
		t.Error("zero duration step should land instantly")
	}
}

func TestNewLegControllerErrors(t *testing.T) {
	a := pose.NewArena()
	foot, _ := a.Add("foot", pose.None, mgl64.Vec3{}, mgl64.QuatIdent())

	if _, err := NewLegController("x", a, foot, 9, DefaultLegConfig()); !errors.Is(err, ErrMissingPose) {
		t.Errorf("expected ErrMissingPose, got %v", err)
	}
	bad := DefaultLegConfig()
	bad.TweenDuration = -1
	if _, err := NewLegController("x", a, foot, foot, bad); !errors.Is(err, ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}
