package audio

import (
	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/creepersim/internal/pose"
	"github.com/san-kum/creepersim/internal/sim"
)

// Bounce drives a mixer pose from loudness so the body hops to the music
// without disturbing the legs.
type Bounce struct {
	analyser *Analyser
	arena    *pose.Arena
	mixer    pose.Index
	base     mgl64.Vec3

	Gain      float64
	Axis      mgl64.Vec3
	Frequency float64
	Damping   float64

	spring   harmonica.Spring
	springDt float64
	pos, vel float64
}

func NewBounce(a *Analyser, arena *pose.Arena, mixer pose.Index, gain float64) *Bounce {
	return &Bounce{
		analyser:  a,
		arena:     arena,
		mixer:     mixer,
		base:      arena.LocalPosition(mixer),
		Gain:      gain,
		Axis:      mgl64.Vec3{0, 1, 0},
		Frequency: 12,
		Damping:   0.6,
	}
}

// Offset is the current displacement along Axis.
func (b *Bounce) Offset() float64 { return b.pos }

func (b *Bounce) Update(f sim.Frame) {
	if f.Dt <= 0 {
		return
	}
	if f.Dt != b.springDt {
		b.spring = harmonica.NewSpring(f.Dt, b.Frequency, b.Damping)
		b.springDt = f.Dt
	}
	target := b.analyser.Loudness() * b.Gain
	b.pos, b.vel = b.spring.Update(b.pos, b.vel, target)
	b.arena.SetLocalPosition(b.mixer, b.base.Add(b.Axis.Mul(b.pos)))
}
