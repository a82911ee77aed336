package scenario

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Waypoint is where the end point should be at a given time. Heading is a
// yaw in degrees around +Y.
type Waypoint struct {
	Position mgl64.Vec3
	Heading  float64
}

// Path maps time to a waypoint. speed is in units per second, size is the
// characteristic extent (radius or half length).
type Path func(t, speed, size float64) Waypoint

var paths = map[string]Path{
	"line":    linePath,
	"circle":  circlePath,
	"figure8": figure8Path,
	"stop_go": stopGoPath,
}

// Paths lists registered path names, sorted.
func Paths() []string {
	names := make([]string, 0, len(paths))
	for n := range paths {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func lookupPath(name string) (Path, error) {
	p, ok := paths[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPath, name)
	}
	return p, nil
}

func headingOf(v mgl64.Vec3) float64 {
	return mgl64.RadToDeg(math.Atan2(v[0], v[2]))
}

// linePath walks back and forth along +X between -size and +size.
func linePath(t, speed, size float64) Waypoint {
	if size <= 0 {
		return Waypoint{Position: mgl64.Vec3{speed * t, 0, 0}, Heading: 90}
	}
	period := 4 * size / speed
	phase := math.Mod(t, period) / period
	var x, heading float64
	if phase < 0.5 {
		x, heading = -size+4*size*phase, 90
	} else {
		x, heading = 3*size-4*size*phase, -90
	}
	return Waypoint{Position: mgl64.Vec3{x, 0, 0}, Heading: heading}
}

func circlePath(t, speed, size float64) Waypoint {
	w := speed / size
	a := w * t
	pos := mgl64.Vec3{size * math.Cos(a), 0, size * math.Sin(a)}
	tangent := mgl64.Vec3{-math.Sin(a), 0, math.Cos(a)}
	return Waypoint{Position: pos, Heading: headingOf(tangent)}
}

// figure8Path is a Gerono lemniscate; speed is approximate.
func figure8Path(t, speed, size float64) Waypoint {
	w := speed / (2 * size)
	a := w * t
	pos := mgl64.Vec3{size * math.Sin(a), 0, size * math.Sin(a) * math.Cos(a)}
	tangent := mgl64.Vec3{math.Cos(a), 0, math.Cos(2 * a)}
	return Waypoint{Position: pos, Heading: headingOf(tangent)}
}

// stopGoPath hops size units along +X, then pauses long enough to trigger
// a realignment with default settings.
func stopGoPath(t, speed, size float64) Waypoint {
	move := size / speed
	pause := 6.0
	cycle := move + pause
	n := math.Floor(t / cycle)
	in := t - n*cycle
	x := n * size
	if in < move {
		x += speed * in
	} else {
		x += size
	}
	return Waypoint{Position: mgl64.Vec3{x, 0, 0}, Heading: 90}
}
