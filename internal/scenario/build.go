package scenario

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/creepersim/internal/creeper"
	"github.com/san-kum/creepersim/internal/pose"
	"github.com/san-kum/creepersim/internal/rig"
)

// Creeper is a fully wired creeper inside its own arena.
type Creeper struct {
	Arena      *pose.Arena
	Body       creeper.Body
	Controller *creeper.Controller
	Legs       []*creeper.LegController
	Tail       []pose.Index
	Solver     *rig.DampedSolver
}

// Build lays legs out radially around the ghost, alternating groups, with
// feet planted on their targets. Targets hang under the ghost so they travel
// with it; feet are roots and only move when stepped.
func Build(cfg Config) (*Creeper, error) {
	a := pose.NewArena()
	start, err := lookupPath(cfg.Path)
	if err != nil {
		return nil, err
	}
	wp := start(0, cfg.Speed, cfg.Size)
	rot := pose.QuatYaw(wp.Heading)

	end, err := a.Add("end_point", pose.None, wp.Position, rot)
	if err != nil {
		return nil, err
	}
	ghost, _ := a.Add("ghost", pose.None, wp.Position, rot)
	mixer, _ := a.Add("mixer", ghost, mgl64.Vec3{}, mgl64.QuatIdent())
	model, _ := a.Add("body", pose.None, wp.Position, rot)

	c := &Creeper{
		Arena: a,
		Body:  creeper.Body{Arena: a, Model: model, Ghost: ghost, EndPoint: end, Mixer: mixer},
	}

	members := make([][]creeper.Leg, cfg.Groups)
	for i := 0; i < cfg.Legs; i++ {
		angle := 2*math.Pi*float64(i)/float64(cfg.Legs) + math.Pi/float64(cfg.Legs)
		local := mgl64.Vec3{math.Cos(angle), 0, math.Sin(angle)}.Mul(cfg.LegSpan * cfg.Scale)

		name := fmt.Sprintf("leg%d", i)
		target, err := a.Add(name+"_target", ghost, local, mgl64.QuatIdent())
		if err != nil {
			return nil, err
		}
		foot, _ := a.Add(name+"_foot", pose.None, a.WorldPosition(target), mgl64.QuatIdent())

		leg, err := creeper.NewLegController(name, a, foot, target, cfg.Leg)
		if err != nil {
			return nil, err
		}
		c.Legs = append(c.Legs, leg)
		g := i % cfg.Groups
		members[g] = append(members[g], leg)
	}

	groups := make([]*creeper.LegGroup, 0, cfg.Groups)
	for _, m := range members {
		g, err := creeper.NewLegGroup(m...)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}

	legs := make([]creeper.Leg, len(c.Legs))
	for i, l := range c.Legs {
		legs[i] = l
	}
	c.Controller, err = creeper.New(cfg.Creeper, c.Body, groups, legs)
	if err != nil {
		return nil, err
	}

	if cfg.Tail > 0 {
		c.buildTail(cfg)
	}
	return c, nil
}

// buildTail hangs a damped chain behind the body. Bones are children of the
// body so a rebuild restores them relative to wherever the body is.
func (c *Creeper) buildTail(cfg Config) {
	a := c.Arena
	seg := cfg.LegSpan * 0.6 * cfg.Scale
	source := c.Body.Model
	var constraints []rig.DampedConstraint
	for i := 0; i < cfg.Tail; i++ {
		local := mgl64.Vec3{0, 0, -seg * float64(i+1)}
		bone, _ := a.Add(fmt.Sprintf("tail%d", i), c.Body.Model, local, mgl64.QuatIdent())
		c.Tail = append(c.Tail, bone)
		constraints = append(constraints, rig.DampedConstraint{
			Constrained:  bone,
			Source:       source,
			DampPosition: 0.7,
			DampRotation: 0.8,
		})
		source = bone
	}
	c.Solver = rig.NewDampedSolver(a, constraints...)
}

// Lag is the distance from the body to the end point.
func (c *Creeper) Lag() float64 {
	return c.Arena.WorldPosition(c.Body.Model).Sub(c.Arena.WorldPosition(c.Body.EndPoint)).Len()
}

// LegDistances returns every leg's foot to target distance.
func (c *Creeper) LegDistances() []float64 {
	out := make([]float64, len(c.Legs))
	for i, l := range c.Legs {
		out[i] = l.CurrentDistance()
	}
	return out
}

// Feet returns the world position of every foot.
func (c *Creeper) Feet() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(c.Legs))
	for i, l := range c.Legs {
		out[i] = c.Arena.WorldPosition(l.Foot())
	}
	return out
}
