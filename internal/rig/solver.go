// Package rig keeps procedural bone constraints attached to their bind poses
// when the cursor is rescaled or the host window changes.
package rig

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/creepersim/internal/pose"
	"github.com/san-kum/creepersim/internal/sim"
)

// Solver evaluates bone constraints once built.
type Solver interface {
	// Clear stops evaluation and drops bind data.
	Clear()
	// Build captures bind data from the current pose and starts evaluation.
	Build() error
	Built() bool
	Update(f sim.Frame)
}

// DampedConstraint makes Constrained trail Source, keeping the offset it had
// at build time. Damping values are in [0, 1]: 0 follows rigidly, 1 freezes.
type DampedConstraint struct {
	Constrained  pose.Index
	Source       pose.Index
	DampPosition float64
	DampRotation float64
}

type dampedBind struct {
	offset    mgl64.Vec3
	rotOffset mgl64.Quat
	localPos  mgl64.Vec3
	localRot  mgl64.Quat
}

// DampedSolver evaluates a list of DampedConstraints in order.
type DampedSolver struct {
	arena       *pose.Arena
	constraints []DampedConstraint
	binds       []dampedBind
	built       bool
}

func NewDampedSolver(arena *pose.Arena, constraints ...DampedConstraint) *DampedSolver {
	return &DampedSolver{arena: arena, constraints: constraints}
}

func (s *DampedSolver) Constraints() []DampedConstraint { return s.constraints }

func (s *DampedSolver) Built() bool { return s.built }

func (s *DampedSolver) Clear() {
	s.built = false
	s.binds = s.binds[:0]
}

func (s *DampedSolver) Build() error {
	s.Clear()
	for i, c := range s.constraints {
		if !s.arena.Valid(c.Constrained) {
			return boneErr("constraints", i, ErrMissingBone)
		}
		if !s.arena.Valid(c.Source) {
			return boneErr("constraints", i, ErrMissingBone)
		}
		srcPos := s.arena.WorldPosition(c.Source)
		srcRot := s.arena.WorldRotation(c.Source)
		inv := srcRot.Inverse()
		s.binds = append(s.binds, dampedBind{
			offset:    inv.Rotate(s.arena.WorldPosition(c.Constrained).Sub(srcPos)),
			rotOffset: inv.Mul(s.arena.WorldRotation(c.Constrained)).Normalize(),
			localPos:  s.arena.LocalPosition(c.Constrained),
			localRot:  s.arena.LocalRotation(c.Constrained),
		})
	}
	s.built = true
	return nil
}

// Update moves every constrained bone toward its bound target. Damping is
// expressed per 1/60 s so results do not depend on the frame rate.
func (s *DampedSolver) Update(f sim.Frame) {
	if !s.built || f.Dt <= 0 {
		return
	}
	for i, c := range s.constraints {
		b := s.binds[i]
		srcPos := s.arena.WorldPosition(c.Source)
		srcRot := s.arena.WorldRotation(c.Source)

		targetPos := srcPos.Add(srcRot.Rotate(b.offset))
		targetRot := srcRot.Mul(b.rotOffset).Normalize()

		kp := 1 - math.Pow(pose.Clamp01(c.DampPosition), f.Dt*60)
		kr := 1 - math.Pow(pose.Clamp01(c.DampRotation), f.Dt*60)

		s.arena.SetWorldPosition(c.Constrained, pose.Lerp(s.arena.WorldPosition(c.Constrained), targetPos, kp))
		s.arena.SetWorldRotation(c.Constrained, pose.Slerp(s.arena.WorldRotation(c.Constrained), targetRot, kr))
	}
}

// ResetJoint puts every constrained bone back on the local pose it had when
// the solver was built. It does nothing before the first Build.
func (s *DampedSolver) ResetJoint() {
	for i, b := range s.binds {
		c := s.constraints[i]
		s.arena.SetLocalPosition(c.Constrained, b.localPos)
		s.arena.SetLocalRotation(c.Constrained, b.localRot)
	}
}
