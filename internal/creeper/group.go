package creeper

// Leg is the per-leg collaborator the controller commands. Triggering a move
// is fire-and-forget: the leg owns its animation, and a new trigger pre-empts
// any move still in flight.
type Leg interface {
	NeedsMove() bool
	CurrentDistance() float64
	TriggerMoveAnimation(force bool)
	Teleport()
}

// LegGroup is a fixed set of legs that step together.
type LegGroup struct {
	legs []Leg
}

// NewLegGroup rejects empty groups and nil members.
func NewLegGroup(legs ...Leg) (*LegGroup, error) {
	if len(legs) == 0 {
		return nil, ErrEmptyGroup
	}
	for _, l := range legs {
		if l == nil {
			return nil, ErrMissingLeg
		}
	}
	return &LegGroup{legs: append([]Leg(nil), legs...)}, nil
}

// NeedsMove is true when any member needs to move.
func (g *LegGroup) NeedsMove() bool {
	for _, l := range g.legs {
		if l.NeedsMove() {
			return true
		}
	}
	return false
}

// AverageDistance is the mean CurrentDistance over all members.
func (g *LegGroup) AverageDistance() float64 {
	sum := 0.0
	for _, l := range g.legs {
		sum += l.CurrentDistance()
	}
	return sum / float64(len(g.legs))
}

func (g *LegGroup) Legs() []Leg { return g.legs }

func (g *LegGroup) Len() int { return len(g.legs) }

func (g *LegGroup) trigger(force bool) {
	for _, l := range g.legs {
		l.TriggerMoveAnimation(force)
	}
}
