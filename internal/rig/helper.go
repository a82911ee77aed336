package rig

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/creepersim/internal/logger"
	"github.com/san-kum/creepersim/internal/pose"
	"github.com/san-kum/creepersim/internal/setting"
	"github.com/san-kum/creepersim/internal/sim"
	"go.uber.org/zap"
)

// Helper rebuilds a Solver when the cursor is resized, shown again, or moved
// to another screen. Constraint solvers keep stale bind data across those
// changes, so the bones are put back on their cached defaults before the
// solver is rebuilt.
type Helper struct {
	arena  *pose.Arena
	solver Solver

	bones      []pose.Index
	defaultPos []mgl64.Vec3
	defaultRot []mgl64.Quat

	pending  bool
	wait     int
	rebuilds int

	unsubscribe []func()
	log         *zap.Logger
}

func NewHelper(arena *pose.Arena, solver Solver, bones ...pose.Index) (*Helper, error) {
	if solver == nil {
		return nil, ErrNoSolver
	}
	for i, b := range bones {
		if arena == nil || !arena.Valid(b) {
			return nil, boneErr("bones", i, ErrMissingBone)
		}
	}
	h := &Helper{
		arena:  arena,
		solver: solver,
		bones:  append([]pose.Index(nil), bones...),
		log:    logger.Named("rig"),
	}
	h.SaveJointInfo()
	return h, nil
}

// SaveJointInfo caches the current local pose of every bone as its default.
func (h *Helper) SaveJointInfo() {
	h.defaultPos = h.defaultPos[:0]
	h.defaultRot = h.defaultRot[:0]
	for _, b := range h.bones {
		h.defaultPos = append(h.defaultPos, h.arena.LocalPosition(b))
		h.defaultRot = append(h.defaultRot, h.arena.LocalRotation(b))
	}
}

// RebuildJoint clears the solver now; the bones are restored and the solver
// rebuilt one frame later. Calling it again while a rebuild is pending
// restarts the wait.
func (h *Helper) RebuildJoint() {
	h.solver.Clear()
	h.pending = true
	h.wait = 1
}

func (h *Helper) Pending() bool { return h.pending }

// Rebuilds counts completed rebuilds.
func (h *Helper) Rebuilds() int { return h.rebuilds }

func (h *Helper) Update(f sim.Frame) {
	if h.pending {
		if h.wait > 0 {
			h.wait--
		} else {
			h.pending = false
			h.restore()
			if err := h.solver.Build(); err != nil {
				h.log.Error("rig rebuild failed", zap.Error(err))
			} else {
				h.rebuilds++
				h.log.Debug("rig rebuilt", zap.Int64("frame", f.Index), zap.Int("bones", len(h.bones)))
			}
		}
	}
	h.solver.Update(f)
}

func (h *Helper) restore() {
	for i, b := range h.bones {
		h.arena.SetLocalPosition(b, h.defaultPos[i])
		h.arena.SetLocalRotation(b, h.defaultRot[i])
	}
}

// Attach subscribes to setting changes and starts the first rebuild.
func (h *Helper) Attach(m *setting.CommonSettingManager) {
	h.Detach()
	h.unsubscribe = append(h.unsubscribe,
		m.CursorSizeChanged.Subscribe(h.OnCursorSizeChanged),
		m.IsAliveCursorActiveChanged.Subscribe(h.OnIsAliveCursorActiveChanged),
		m.WindowChanged.Subscribe(h.OnWindowChanged),
	)
	h.RebuildJoint()
}

func (h *Helper) Detach() {
	for _, fn := range h.unsubscribe {
		fn()
	}
	h.unsubscribe = nil
}

func (h *Helper) OnCursorSizeChanged(float64) { h.RebuildJoint() }

func (h *Helper) OnIsAliveCursorActiveChanged(active bool) {
	if active {
		h.RebuildJoint()
	}
}

func (h *Helper) OnWindowChanged(ev setting.WindowEvent) {
	if ev.Stage == setting.WindowAfter {
		h.RebuildJoint()
	}
}
