package liquid

import (
	"fmt"
	"sort"
)

// deriver returns d(state)/dt. State layout is positions in the first half
// and velocities in the second.
type deriver func(x []float64, t float64) []float64

type integrator interface {
	step(f deriver, x []float64, t, dt float64) []float64
}

var integrators = map[string]func() integrator{
	"euler":  func() integrator { return &symplecticEuler{} },
	"verlet": func() integrator { return &verlet{} },
	"rk4":    func() integrator { return &rk4{} },
}

// Integrators lists the accepted integrator names.
func Integrators() []string {
	names := make([]string, 0, len(integrators))
	for n := range integrators {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func newIntegrator(name string) (integrator, error) {
	ctor, ok := integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntegrator, name)
	}
	return ctor(), nil
}

// symplecticEuler updates velocity first, then position with the new velocity.
type symplecticEuler struct{}

func (symplecticEuler) step(f deriver, x []float64, t, dt float64) []float64 {
	n := len(x)
	half := n / 2
	dx := f(x, t)
	out := make([]float64, n)
	for i := 0; i < half; i++ {
		out[half+i] = x[half+i] + dt*dx[half+i]
		out[i] = x[i] + dt*out[half+i]
	}
	return out
}

type verlet struct {
	scratch []float64
}

func (v *verlet) step(f deriver, x []float64, t, dt float64) []float64 {
	n := len(x)
	half := n / 2
	if len(v.scratch) != n {
		v.scratch = make([]float64, n)
	}

	out := make([]float64, n)
	dx := f(x, t)
	dt2 := dt * dt
	for i := 0; i < half; i++ {
		out[i] = x[i] + x[half+i]*dt + 0.5*dx[half+i]*dt2
		v.scratch[i] = out[i]
		v.scratch[half+i] = x[half+i]
	}

	dxNew := f(v.scratch, t+dt)
	halfDt := 0.5 * dt
	for i := 0; i < half; i++ {
		out[half+i] = x[half+i] + (dx[half+i]+dxNew[half+i])*halfDt
	}
	return out
}

type rk4 struct {
	k1, k2, k3, k4, scratch []float64
}

func (r *rk4) ensure(n int) {
	if len(r.k1) != n {
		r.k1 = make([]float64, n)
		r.k2 = make([]float64, n)
		r.k3 = make([]float64, n)
		r.k4 = make([]float64, n)
		r.scratch = make([]float64, n)
	}
}

func (r *rk4) step(f deriver, x []float64, t, dt float64) []float64 {
	n := len(x)
	r.ensure(n)

	copy(r.k1, f(x, t))
	for i := range x {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	copy(r.k2, f(r.scratch, t+dt*0.5))
	for i := range x {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	copy(r.k3, f(r.scratch, t+dt*0.5))
	for i := range x {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	copy(r.k4, f(r.scratch, t+dt))

	out := make([]float64, n)
	dt6 := dt / 6.0
	for i := range x {
		out[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
	return out
}
