// Package liquid is a small 2D smoothed-particle fluid driven by cursor force
// fields, plus the bridge that keeps a force field in sync with its settings.
package liquid

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/creepersim/internal/sim"
)

// Config holds the fluid parameters.
type Config struct {
	Particles  int     `yaml:"particles"`
	H          float64 `yaml:"smoothing_radius"`
	Rho0       float64 `yaml:"rest_density"`
	Stiffness  float64 `yaml:"stiffness"`
	Viscosity  float64 `yaml:"viscosity"`
	Gravity    float64 `yaml:"gravity"`
	Mass       float64 `yaml:"mass"`
	BoundsX    float64 `yaml:"bounds_x"`
	BoundsY    float64 `yaml:"bounds_y"`
	FieldGain  float64 `yaml:"field_gain"`
	Integrator string  `yaml:"integrator"`
	Substeps   int     `yaml:"substeps"`
	Seed       int64   `yaml:"seed"`
}

// DefaultConfig is a small dam break that settles within a few seconds.
func DefaultConfig() Config {
	return Config{
		Particles:  144,
		H:          2.0,
		Rho0:       1.0,
		Stiffness:  50.0,
		Viscosity:  0.1,
		Gravity:    9.81,
		Mass:       1.0,
		BoundsX:    60,
		BoundsY:    40,
		FieldGain:  25,
		Integrator: "euler",
		Substeps:   4,
		Seed:       1,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Particles < 1:
		return fmt.Errorf("%w: particles must be positive, got %d", ErrInvalidConfig, c.Particles)
	case c.H <= 0 || c.Mass <= 0 || c.Rho0 <= 0:
		return fmt.Errorf("%w: smoothing radius, mass and rest density must be positive", ErrInvalidConfig)
	case c.BoundsX <= 0 || c.BoundsY <= 0:
		return fmt.Errorf("%w: bounds must be positive", ErrInvalidConfig)
	case c.Substeps < 1:
		return fmt.Errorf("%w: substeps must be at least 1, got %d", ErrInvalidConfig, c.Substeps)
	}
	if _, ok := integrators[c.Integrator]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownIntegrator, c.Integrator)
	}
	return nil
}

// Liquid is a sim.System: each frame advances the particles by Dt.
type Liquid struct {
	cfg    Config
	state  []float64
	fields []*ForceField
	integ  integrator
	t      float64

	rho, press []float64
}

func New(cfg Config) (*Liquid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	integ, err := newIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	l := &Liquid{
		cfg:   cfg,
		integ: integ,
		rho:   make([]float64, cfg.Particles),
		press: make([]float64, cfg.Particles),
	}
	l.Reset()
	return l, nil
}

// Reset lays the particles out as a block in the lower left corner.
func (l *Liquid) Reset() {
	n := l.cfg.Particles
	rng := rand.New(rand.NewSource(l.cfg.Seed))
	l.state = make([]float64, n*4)
	cols := int(math.Sqrt(float64(n)))
	if cols < 1 {
		cols = 1
	}
	for i := 0; i < n; i++ {
		r, c := i/cols, i%cols
		l.state[2*i] = float64(c)*l.cfg.H*0.5 + 1.0 + rng.Float64()*0.1
		l.state[2*i+1] = float64(r)*l.cfg.H*0.5 + 1.0 + rng.Float64()*0.1
	}
	l.t = 0
}

func (l *Liquid) Config() Config { return l.cfg }

func (l *Liquid) AddField(f *ForceField) { l.fields = append(l.fields, f) }

func (l *Liquid) Fields() []*ForceField { return l.fields }

func (l *Liquid) Len() int { return l.cfg.Particles }

// Position returns particle i.
func (l *Liquid) Position(i int) (x, y float64) { return l.state[2*i], l.state[2*i+1] }

func (l *Liquid) Velocity(i int) (vx, vy float64) {
	half := len(l.state) / 2
	return l.state[half+2*i], l.state[half+2*i+1]
}

func (l *Liquid) Update(f sim.Frame) {
	if f.Dt <= 0 {
		return
	}
	h := f.Dt / float64(l.cfg.Substeps)
	for i := 0; i < l.cfg.Substeps; i++ {
		l.state = l.integ.step(l.derive, l.state, l.t, h)
		l.t += h
	}
}

// Valid reports whether every coordinate is finite.
func (l *Liquid) Valid() bool {
	for _, v := range l.state {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// KineticEnergy sums 0.5 m v^2 over all particles.
func (l *Liquid) KineticEnergy() float64 {
	half := len(l.state) / 2
	e := 0.0
	for i := half; i < len(l.state); i++ {
		e += 0.5 * l.cfg.Mass * l.state[i] * l.state[i]
	}
	return e
}

func (l *Liquid) CenterOfMass() (x, y float64) {
	n := l.cfg.Particles
	for i := 0; i < n; i++ {
		x += l.state[2*i]
		y += l.state[2*i+1]
	}
	return x / float64(n), y / float64(n)
}

func poly6(r2, h2 float64) float64 {
	if r2 > h2 {
		return 0
	}
	return 315.0 / (64.0 * math.Pi * math.Pow(h2, 4.5)) * math.Pow(h2-r2, 3)
}

func spikyGrad(r, h float64) float64 {
	if r > h || r < 1e-6 {
		return 0
	}
	return -45.0 / (math.Pi * math.Pow(h, 6)) * math.Pow(h-r, 2)
}

func viscLap(r, h float64) float64 {
	if r > h {
		return 0
	}
	return 45.0 / (math.Pi * math.Pow(h, 6)) * (h - r)
}

func (l *Liquid) derive(x []float64, _ float64) []float64 {
	n := l.cfg.Particles
	half := 2 * n
	h, h2 := l.cfg.H, l.cfg.H*l.cfg.H
	out := make([]float64, len(x))
	rho, press := l.rho, l.press

	for i := 0; i < n; i++ {
		rho[i] = 0
		xi, yi := x[2*i], x[2*i+1]
		for j := 0; j < n; j++ {
			dx, dy := xi-x[2*j], yi-x[2*j+1]
			if r2 := dx*dx + dy*dy; r2 < h2 {
				rho[i] += l.cfg.Mass * poly6(r2, h2)
			}
		}
		press[i] = l.cfg.Stiffness * (rho[i] - l.cfg.Rho0)
	}

	for i := 0; i < n; i++ {
		xi, yi := x[2*i], x[2*i+1]
		vxi, vyi := x[half+2*i], x[half+2*i+1]
		fx, fy := 0.0, -l.cfg.Gravity*rho[i]

		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			dx, dy := xi-x[2*j], yi-x[2*j+1]
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist >= h || dist < 1e-9 {
				continue
			}
			fp := -l.cfg.Mass * (press[i] + press[j]) / (2 * rho[j]) * spikyGrad(dist, h)
			fx += fp * dx / dist
			fy += fp * dy / dist

			fv := l.cfg.Viscosity * l.cfg.Mass * viscLap(dist, h) / rho[j]
			fx += fv * (x[half+2*j] - vxi)
			fy += fv * (x[half+2*j+1] - vyi)
		}

		for _, field := range l.fields {
			ax, ay := field.Force(xi, yi)
			fx += l.cfg.FieldGain * ax * rho[i]
			fy += l.cfg.FieldGain * ay * rho[i]
		}

		// soft walls
		if xi < 0 {
			fx += 500 * -xi
		}
		if xi > l.cfg.BoundsX {
			fx -= 500 * (xi - l.cfg.BoundsX)
		}
		if yi < 0 {
			fy += 500 * -yi
		}
		if yi > l.cfg.BoundsY {
			fy -= 500 * (yi - l.cfg.BoundsY)
		}

		out[2*i], out[2*i+1] = vxi, vyi
		out[half+2*i], out[half+2*i+1] = fx/rho[i], fy/rho[i]
	}
	return out
}
