// Package creeper implements procedural multi-legged locomotion: a body that
// trails a moving end point through a ghost anchor, and leg groups that take
// turns stepping toward their ghost targets.
package creeper

import (
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/creepersim/internal/logger"
	"github.com/san-kum/creepersim/internal/pose"
	"github.com/san-kum/creepersim/internal/sim"
	"go.uber.org/zap"
)

// NoGroup is the lastMoveGroupIndex before any group has stepped.
const NoGroup = -1

// Phase is the logical state of the controller after a frame.
type Phase int

const (
	// Idle: no group stepped recently.
	Idle Phase = iota
	// Stepping: a group was triggered and the move interval has not elapsed.
	Stepping
	// Aligning: the realignment pass fired this frame.
	Aligning
)

func (p Phase) String() string {
	switch p {
	case Stepping:
		return "STEPPING"
	case Aligning:
		return "ALIGNING"
	default:
		return "IDLE"
	}
}

// Body names the arena records the controller drives and reads.
type Body struct {
	Arena *pose.Arena
	// Model is the visible body (position and rotation are written every frame).
	Model pose.Index
	// Ghost chases EndPoint at bounded speed.
	Ghost pose.Index
	// EndPoint is where the creeper is heading.
	EndPoint pose.Index
	// Mixer offsets the body without disturbing the legs (jumps, crouches,
	// audio bounce). Usually a child of Ghost.
	Mixer pose.Index
}

func (b Body) validate() error {
	if b.Arena == nil {
		return configErr("arena", ErrMissingPose)
	}
	for _, ref := range []struct {
		field string
		idx   pose.Index
	}{
		{"model", b.Model},
		{"ghost", b.Ghost},
		{"end_point", b.EndPoint},
		{"mixer", b.Mixer},
	} {
		if !b.Arena.Valid(ref.idx) {
			return configErr(ref.field, ErrMissingPose)
		}
	}
	return nil
}

// State is the mutable locomotion state.
type State struct {
	LastMoveGroup int
	LastMoveTime  float64
	BasePosition  mgl64.Vec3
	HasAligned    bool
}

// StepEvent is published whenever legs are commanded to move.
type StepEvent struct {
	Frame  int64
	Time   float64
	Group  int // NoGroup for an alignment pass
	Forced bool
}

// Observer is notified of every StepEvent, in registration order.
type Observer interface {
	OnStep(ev StepEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev StepEvent)

func (fn ObserverFunc) OnStep(ev StepEvent) { fn(ev) }

// Controller decides every frame where the body goes and which leg group steps.
type Controller struct {
	cfg    Config
	body   Body
	legs   []Leg
	groups []*LegGroup

	state     State
	phase     Phase
	observers []Observer
	log       *zap.Logger
}

// New validates the whole configuration up front. legs may be nil, in which
// case the members of groups are used in group order.
func New(cfg Config, body Body, groups []*LegGroup, legs []Leg) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := body.validate(); err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, ErrNoGroups
	}
	for i, g := range groups {
		if g == nil || g.Len() == 0 {
			return nil, configErr("groups["+strconv.Itoa(i)+"]", ErrEmptyGroup)
		}
	}
	if legs == nil {
		legs = collectLegs(groups)
	}
	for i, l := range legs {
		if l == nil {
			return nil, configErr("legs["+strconv.Itoa(i)+"]", ErrMissingLeg)
		}
	}

	c := &Controller{
		cfg:    cfg,
		body:   body,
		legs:   legs,
		groups: groups,
		log:    logger.Named("creeper"),
	}
	c.state = State{
		LastMoveGroup: NoGroup,
		BasePosition:  body.Arena.WorldPosition(body.Model),
	}
	return c, nil
}

func collectLegs(groups []*LegGroup) []Leg {
	seen := make(map[Leg]bool)
	var out []Leg
	for _, g := range groups {
		for _, l := range g.legs {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	return out
}

// AddObserver registers o for step events.
func (c *Controller) AddObserver(o Observer) { c.observers = append(c.observers, o) }

// Config returns the configuration in effect.
func (c *Controller) Config() Config { return c.cfg }

// SetConfig hot-swaps the configuration; an invalid one is rejected and the
// previous configuration stays in effect.
func (c *Controller) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// State returns a copy of the locomotion state.
func (c *Controller) State() State { return c.state }

// Phase reports what the last Update did.
func (c *Controller) Phase() Phase { return c.phase }

func (c *Controller) Groups() []*LegGroup { return c.groups }

// Legs returns every leg the controller drives, without duplicates.
func (c *Controller) Legs() []Leg { return c.legs }

func (c *Controller) Body() Body { return c.body }

// Update runs one frame: body follow first, then leg group selection.
func (c *Controller) Update(f sim.Frame) {
	c.updateBody(f)
	c.updateLegs(f)
}

func (c *Controller) updateBody(f sim.Frame) {
	a := c.body.Arena
	dt := f.Dt
	if dt < 0 {
		dt = 0
	}

	ghostPos := a.WorldPosition(c.body.Ghost)
	endPos := a.WorldPosition(c.body.EndPoint)
	ghostPos = pose.MoveTowards(ghostPos, endPos, c.cfg.GhostBodyMoveSpeed*dt*f.Scale)
	a.SetWorldPosition(c.body.Ghost, ghostPos)

	// first-order lag, clamped so a large dt lands exactly on the ghost
	k := pose.Clamp01(c.cfg.BodyMoveSpeed * dt)
	c.state.BasePosition = c.state.BasePosition.Add(ghostPos.Sub(c.state.BasePosition).Mul(k))

	// mixer offset is applied unsmoothed so reactive effects stay in sync
	offset := a.TransformDirection(a.Parent(c.body.Mixer), a.LocalPosition(c.body.Mixer)).Mul(f.Scale)
	a.SetWorldPosition(c.body.Model, c.state.BasePosition.Add(offset))

	if dt > 0 {
		if target, ok := c.ghostTargetRotation(ghostPos, endPos); ok {
			next := pose.Slerp(a.WorldRotation(c.body.Ghost), target, c.cfg.GhostBodyRotateSpeed*dt)
			a.SetWorldRotation(c.body.Ghost, next)
		}
	}
	a.SetWorldRotation(c.body.Model, a.WorldRotation(c.body.Mixer))
}

func (c *Controller) ghostTargetRotation(ghostPos, endPos mgl64.Vec3) (mgl64.Quat, bool) {
	a := c.body.Arena
	if c.cfg.SyncRotation {
		return a.WorldRotation(c.body.EndPoint), true
	}
	up := a.TransformDirection(c.body.Ghost, c.cfg.LocalBodyUp)
	return pose.LookRotation(endPos.Sub(ghostPos), up)
}

func (c *Controller) updateLegs(f sim.Frame) {
	c.phase = Idle

	group := c.selectGroup()
	if group != NoGroup {
		if f.Now-c.state.LastMoveTime >= c.cfg.LegMoveIntervalTime {
			c.stepGroup(group, f)
			c.phase = Stepping
			return
		}
	} else if !c.state.HasAligned && c.cfg.LegRealignDelayTime > 0 && f.Now-c.state.LastMoveTime > c.cfg.LegRealignDelayTime {
		c.ForceMoveAllLegs()
		c.state.HasAligned = true
		c.phase = Aligning
		c.log.Debug("legs realigned", zap.Float64("time", f.Now), zap.Float64("still_for", f.Now-c.state.LastMoveTime))
		c.publish(StepEvent{Frame: f.Index, Time: f.Now, Group: NoGroup, Forced: true})
		return
	}

	if c.state.LastMoveGroup != NoGroup && f.Now-c.state.LastMoveTime < c.cfg.LegMoveIntervalTime {
		c.phase = Stepping
	}
}

// selectGroup returns the group, other than the one that stepped last, with
// the strictly largest average distance among groups that need to move.
// Ties keep the earlier group.
func (c *Controller) selectGroup() int {
	best := NoGroup
	maxDistance := 0.0
	for i, g := range c.groups {
		if i == c.state.LastMoveGroup {
			continue
		}
		d := 0.0
		if g.NeedsMove() {
			d = g.AverageDistance()
		}
		if d > maxDistance {
			best, maxDistance = i, d
		}
	}
	return best
}

func (c *Controller) stepGroup(i int, f sim.Frame) {
	c.groups[i].trigger(false)
	c.state.LastMoveGroup = i
	c.state.LastMoveTime = f.Now
	c.state.HasAligned = false

	if ce := c.log.Check(zap.DebugLevel, "leg group stepped"); ce != nil {
		ce.Write(zap.Int("group", i), zap.Float64("time", f.Now), zap.Int64("frame", f.Index))
	}
	c.publish(StepEvent{Frame: f.Index, Time: f.Now, Group: i})
}

// Teleport snaps every leg onto its target with no animation.
func (c *Controller) Teleport() {
	for _, l := range c.legs {
		l.Teleport()
	}
}

// ForceMoveAllLegs triggers every leg regardless of timing or need.
func (c *Controller) ForceMoveAllLegs() {
	for _, l := range c.legs {
		l.TriggerMoveAnimation(true)
	}
}

func (c *Controller) publish(ev StepEvent) {
	for _, o := range c.observers {
		o.OnStep(ev)
	}
}
