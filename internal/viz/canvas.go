package viz

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// brailleBase is the empty braille cell; each cell holds 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
const brailleBase = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille pixel grid. Pixel coordinates run Width*2 by Height*4.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) cell(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, false
	}
	return row, col, true
}

func (c *Canvas) Set(x, y int) {
	if row, col, ok := c.cell(x, y); ok {
		c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	}
}

func (c *Canvas) Unset(x, y int) {
	if row, col, ok := c.cell(x, y); ok {
		c.Grid[row][col] &^= rune(pixelMap[y%4][x%2])
	}
}

// IsSet reports whether the pixel at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	row, col, ok := c.cell(x, y)
	return ok && c.Grid[row][col]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBase
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawCircle outlines a circle of radius r pixels.
func (c *Canvas) DrawCircle(cx, cy, r int) {
	if r <= 0 {
		c.Set(cx, cy)
		return
	}
	steps := max(8, 4*r)
	px, py := cx+r, cy
	for i := 1; i <= steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(math.Round(float64(r)*math.Cos(a)))
		y := cy + int(math.Round(float64(r)*math.Sin(a)))
		c.DrawLine(px, py, x, y)
		px, py = x, y
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Viewport maps the ground plane (X right, Z up) onto canvas pixels.
type Viewport struct {
	Center mgl64.Vec3
	// Extent is the world distance from the centre to the nearer canvas edge.
	Extent float64
	Width  int // pixels
	Height int // pixels
}

func (v Viewport) pixelsPerUnit() float64 {
	if v.Extent <= 0 {
		return 1
	}
	// braille dots are roughly twice as tall as wide on screen
	return float64(min(v.Width, v.Height*2)) / (2 * v.Extent)
}

// Project returns the pixel for a world point.
func (v Viewport) Project(p mgl64.Vec3) (int, int) {
	k := v.pixelsPerUnit()
	x := float64(v.Width)/2 + (p[0]-v.Center[0])*k
	y := float64(v.Height)/2 - (p[2]-v.Center[2])*k/2
	return int(math.Round(x)), int(math.Round(y))
}

// Line draws a world-space segment.
func (v Viewport) Line(c *Canvas, a, b mgl64.Vec3) {
	x0, y0 := v.Project(a)
	x1, y1 := v.Project(b)
	c.DrawLine(x0, y0, x1, y1)
}

// Dot draws a world-space point as a small circle of world radius r.
func (v Viewport) Dot(c *Canvas, p mgl64.Vec3, r float64) {
	x, y := v.Project(p)
	c.DrawCircle(x, y, int(math.Round(r*v.pixelsPerUnit())))
}
