package liquid

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// Shape selects the distance metric of a force field.
type Shape int

const (
	Sphere Shape = iota
	Cube
	Cylinder
)

var shapeNames = map[Shape]string{Sphere: "sphere", Cube: "cube", Cylinder: "cylinder"}

func (s Shape) String() string {
	if n, ok := shapeNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

func ParseShape(name string) (Shape, error) {
	for s, n := range shapeNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return Sphere, fmt.Errorf("%w: %q", ErrUnknownShape, name)
}

func (s Shape) MarshalYAML() (interface{}, error) { return s.String(), nil }

func (s *Shape) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseShape(value.Value)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ForceField pushes (positive strength) or pulls (negative strength) liquid
// particles inside Radius. The force decays as exp(-DistanceDecay * d / Radius).
type ForceField struct {
	Shape         Shape
	Strength      float64
	DistanceDecay float64

	X, Y   float64
	Radius float64
}

func NewForceField(x, y, radius float64) *ForceField {
	return &ForceField{Shape: Sphere, Strength: 1, DistanceDecay: 1, X: x, Y: y, Radius: radius}
}

// Force returns the acceleration the field applies at (px, py).
func (f *ForceField) Force(px, py float64) (fx, fy float64) {
	if f.Strength == 0 || f.Radius <= 0 {
		return 0, 0
	}
	dx, dy := px-f.X, py-f.Y

	var d, nx, ny float64
	switch f.Shape {
	case Cube:
		// Chebyshev distance, pushing along the dominant axis
		if math.Abs(dx) >= math.Abs(dy) {
			d, nx = math.Abs(dx), sign(dx)
		} else {
			d, ny = math.Abs(dy), sign(dy)
		}
	case Cylinder:
		// vertical axis through the centre
		d, nx = math.Abs(dx), sign(dx)
	default:
		d = math.Hypot(dx, dy)
		if d > 1e-9 {
			nx, ny = dx/d, dy/d
		}
	}
	if d >= f.Radius {
		return 0, 0
	}

	mag := f.Strength * math.Exp(-f.DistanceDecay*d/f.Radius)
	return mag * nx, mag * ny
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
