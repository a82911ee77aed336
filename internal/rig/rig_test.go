package rig

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/creepersim/internal/pose"
	"github.com/san-kum/creepersim/internal/setting"
	"github.com/san-kum/creepersim/internal/sim"
)

type countingSolver struct {
	clears, builds, updates int
	built                   bool
}

func (s *countingSolver) Clear()           { s.clears++; s.built = false }
func (s *countingSolver) Build() error     { s.builds++; s.built = true; return nil }
func (s *countingSolver) Built() bool      { return s.built }
func (s *countingSolver) Update(sim.Frame) { s.updates++ }

func newBones(t *testing.T) (*pose.Arena, pose.Index, pose.Index) {
	t.Helper()
	a := pose.NewArena()
	root, err := a.Add("root", pose.None, mgl64.Vec3{}, mgl64.QuatIdent())
	if err != nil {
		t.Fatal(err)
	}
	tail, _ := a.Add("tail", root, mgl64.Vec3{0, 0, -1}, pose.QuatYaw(10))
	return a, root, tail
}

func step(h *Helper, i int64) {
	h.Update(sim.Frame{Index: i, Now: float64(i) / 60, Dt: 1.0 / 60, Scale: 1})
}

func TestRebuildRestoresBonesAfterOneFrame(t *testing.T) {
	a, _, tail := newBones(t)
	solver := &countingSolver{}
	h, err := NewHelper(a, solver, tail)
	if err != nil {
		t.Fatal(err)
	}

	a.SetLocalPosition(tail, mgl64.Vec3{3, 3, 3})
	a.SetLocalRotation(tail, pose.QuatYaw(90))
	h.RebuildJoint()

	if solver.clears != 1 || solver.built {
		t.Fatalf("solver should be cleared immediately")
	}

	step(h, 0)
	if solver.builds != 0 || !h.Pending() {
		t.Fatalf("rebuild must wait one frame")
	}
	if a.LocalPosition(tail) != (mgl64.Vec3{3, 3, 3}) {
		t.Errorf("bones restored too early")
	}

	step(h, 1)
	if solver.builds != 1 || h.Pending() {
		t.Fatalf("expected rebuild on the second frame, builds=%d", solver.builds)
	}
	if a.LocalPosition(tail) != (mgl64.Vec3{0, 0, -1}) {
		t.Errorf("position not restored: %v", a.LocalPosition(tail))
	}
	if !a.LocalRotation(tail).ApproxEqual(pose.QuatYaw(10)) {
		t.Errorf("rotation not restored: %v", a.LocalRotation(tail))
	}
}

func TestRebuildCancelsPending(t *testing.T) {
	a, _, tail := newBones(t)
	solver := &countingSolver{}
	h, _ := NewHelper(a, solver, tail)

	h.RebuildJoint()
	step(h, 0)
	h.RebuildJoint()
	step(h, 1)
	step(h, 2)
	step(h, 3)

	if solver.builds != 1 {
		t.Errorf("expected a single build after a restarted rebuild, got %d", solver.builds)
	}
	if solver.clears != 2 {
		t.Errorf("expected two clears, got %d", solver.clears)
	}
	if h.Rebuilds() != 1 {
		t.Errorf("expected 1 rebuild, got %d", h.Rebuilds())
	}
}

func TestHelperReactsToSettings(t *testing.T) {
	a, _, tail := newBones(t)
	solver := &countingSolver{}
	h, _ := NewHelper(a, solver, tail)
	m := setting.NewCommonSettingManager(nil)

	h.Attach(m)
	if !h.Pending() {
		t.Fatal("attach should start a rebuild")
	}
	for i := int64(0); i < 3; i++ {
		step(h, i)
	}

	tests := []struct {
		name    string
		trigger func()
		want    bool
	}{
		{"cursor size", func() { _ = m.SetCursorSize(2) }, true},
		{"hidden", func() { m.SetAliveCursorActive(false) }, false},
		{"shown", func() { m.SetAliveCursorActive(true) }, true},
		{"window before", func() { m.NotifyWindowChanged(setting.WindowEvent{Stage: setting.WindowBefore}) }, false},
		{"window after", func() { m.NotifyWindowChanged(setting.WindowEvent{Stage: setting.WindowAfter}) }, true},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.trigger()
			if h.Pending() != tt.want {
				t.Errorf("pending = %v, want %v", h.Pending(), tt.want)
			}
			step(h, int64(10+2*i))
			step(h, int64(11+2*i))
		})
	}

	h.Detach()
	_ = m.SetCursorSize(3)
	if h.Pending() {
		t.Error("detached helper must not react")
	}
}

func TestNewHelperErrors(t *testing.T) {
	a, _, _ := newBones(t)
	if _, err := NewHelper(a, nil); !errors.Is(err, ErrNoSolver) {
		t.Errorf("expected ErrNoSolver, got %v", err)
	}
	if _, err := NewHelper(a, &countingSolver{}, 7); !errors.Is(err, ErrMissingBone) {
		t.Errorf("expected ErrMissingBone, got %v", err)
	}
}

func TestDampedSolverFollowsSource(t *testing.T) {
	a, root, tail := newBones(t)
	s := NewDampedSolver(a, DampedConstraint{Constrained: tail, Source: root, DampPosition: 0.5, DampRotation: 0.5})

	s.Update(sim.Frame{Dt: 1.0 / 60, Scale: 1})
	if s.Built() {
		t.Fatal("solver should not be built yet")
	}
	if err := s.Build(); err != nil {
		t.Fatal(err)
	}

	a.SetLocalPosition(root, mgl64.Vec3{1, 0, 0})
	// tail is a child of root, so pin it where it was before the move
	a.SetWorldPosition(tail, mgl64.Vec3{0, 0, -1})

	prev := math.Inf(1)
	for i := 0; i < 120; i++ {
		s.Update(sim.Frame{Dt: 1.0 / 60, Scale: 1})
		d := a.WorldPosition(tail).Sub(mgl64.Vec3{1, 0, -1}).Len()
		if d > prev+1e-12 {
			t.Fatalf("distance to target grew at frame %d", i)
		}
		prev = d
	}
	if prev > 1e-6 {
		t.Errorf("constrained bone did not converge, distance %v", prev)
	}
}

func TestDampedSolverResetJoint(t *testing.T) {
	a, root, tail := newBones(t)
	s := NewDampedSolver(a, DampedConstraint{Constrained: tail, Source: root})
	if err := s.Build(); err != nil {
		t.Fatal(err)
	}

	a.SetLocalPosition(tail, mgl64.Vec3{5, 5, 5})
	a.SetLocalRotation(tail, pose.QuatYaw(-45))
	s.ResetJoint()

	if a.LocalPosition(tail) != (mgl64.Vec3{0, 0, -1}) {
		t.Errorf("position not reset: %v", a.LocalPosition(tail))
	}
	if !a.LocalRotation(tail).ApproxEqual(pose.QuatYaw(10)) {
		t.Errorf("rotation not reset: %v", a.LocalRotation(tail))
	}

	s.Clear()
	if s.Built() {
		t.Error("Clear should stop the solver")
	}
	bad := NewDampedSolver(a, DampedConstraint{Constrained: 9, Source: root})
	if err := bad.Build(); !errors.Is(err, ErrMissingBone) {
		t.Errorf("expected ErrMissingBone, got %v", err)
	}
}
