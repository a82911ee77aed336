package creeper

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/creepersim/internal/pose"
	"github.com/san-kum/creepersim/internal/sim"
)

// LegController moves a foot toward its ghost target with a short arced tween.
// The target normally hangs under the ghost body so it travels with it; the
// foot stays planted until the locomotion controller triggers a step.
type LegController struct {
	name   string
	arena  *pose.Arena
	foot   pose.Index
	target pose.Index
	cfg    LegConfig

	scale    float64
	tweening bool
	progress float64
	from     mgl64.Vec3
	steps    int
}

// NewLegController validates both pose references.
func NewLegController(name string, arena *pose.Arena, foot, target pose.Index, cfg LegConfig) (*LegController, error) {
	if arena == nil || !arena.Valid(foot) {
		return nil, configErr(name+".foot", ErrMissingPose)
	}
	if !arena.Valid(target) {
		return nil, configErr(name+".target", ErrMissingPose)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &LegController{
		name:   name,
		arena:  arena,
		foot:   foot,
		target: target,
		cfg:    cfg,
		scale:  1,
	}, nil
}

func (l *LegController) Name() string { return l.name }

func (l *LegController) Foot() pose.Index { return l.foot }

func (l *LegController) Target() pose.Index { return l.target }

// Steps counts started step animations, forced ones included.
func (l *LegController) Steps() int { return l.steps }

func (l *LegController) Moving() bool { return l.tweening }

func (l *LegController) SetConfig(cfg LegConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	l.cfg = cfg
	return nil
}

func (l *LegController) CurrentDistance() float64 {
	return l.arena.WorldPosition(l.foot).Sub(l.arena.WorldPosition(l.target)).Len()
}

func (l *LegController) NeedsMove() bool {
	return l.CurrentDistance() > l.cfg.MoveThreshold*l.scale
}

// TriggerMoveAnimation starts a step from wherever the foot is now. Without
// force, a leg that is already close enough ignores the trigger.
func (l *LegController) TriggerMoveAnimation(force bool) {
	if !force && !l.NeedsMove() {
		return
	}
	l.from = l.arena.WorldPosition(l.foot)
	l.progress = 0
	l.tweening = true
	l.steps++
	if l.cfg.TweenDuration == 0 {
		l.finish()
	}
}

// Teleport snaps the foot onto its target and drops any animation in flight.
func (l *LegController) Teleport() {
	l.tweening = false
	l.progress = 0
	l.arena.SetWorldPosition(l.foot, l.arena.WorldPosition(l.target))
}

// Update advances the step animation.
func (l *LegController) Update(f sim.Frame) {
	if f.Scale > 0 {
		l.scale = f.Scale
	}
	if !l.tweening {
		return
	}

	l.progress += f.Dt / l.cfg.TweenDuration
	if l.progress >= 1 {
		l.finish()
		return
	}

	to := l.arena.WorldPosition(l.target)
	t := easeInOut(l.progress)
	pos := pose.Lerp(l.from, to, t)

	up := l.arena.TransformDirection(l.target, mgl64.Vec3{0, 1, 0})
	lift := math.Sin(math.Pi*l.progress) * l.cfg.StepHeight * l.scale
	l.arena.SetWorldPosition(l.foot, pos.Add(up.Mul(lift)))
}

func (l *LegController) finish() {
	l.tweening = false
	l.progress = 0
	l.arena.SetWorldPosition(l.foot, l.arena.WorldPosition(l.target))
}

func easeInOut(t float64) float64 {
	return t * t * (3 - 2*t)
}
