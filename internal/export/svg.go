// Package export renders creeper runs and canvases as SVG.
package export

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/creepersim/internal/creeper"
	"github.com/san-kum/creepersim/internal/scenario"
	"github.com/san-kum/creepersim/internal/viz"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// CanvasToSVG converts a braille canvas to one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	w := int(float64(canvas.Width) * scale * 2)
	h := int(float64(canvas.Height) * scale * 4)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, w, h, w, h)
	sb.WriteString("<g fill=\"#00ff00\">\n")
	for y := 0; y < canvas.Height*4; y++ {
		for x := 0; x < canvas.Width*2; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, scale*0.4)
			}
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// bounds is the ground-plane box covering every point, padded by 10%.
type bounds struct {
	minX, minZ, rangeX, rangeZ float64
}

func boundsOf(tracks ...[]mgl64.Vec3) bounds {
	first := true
	var minX, maxX, minZ, maxZ float64
	for _, track := range tracks {
		for _, p := range track {
			if first {
				minX, maxX, minZ, maxZ = p[0], p[0], p[2], p[2]
				first = false
				continue
			}
			minX, maxX = min(minX, p[0]), max(maxX, p[0])
			minZ, maxZ = min(minZ, p[2]), max(maxZ, p[2])
		}
	}
	rx, rz := maxX-minX, maxZ-minZ
	if rx == 0 {
		rx = 1
	}
	if rz == 0 {
		rz = 1
	}
	return bounds{minX: minX - rx*0.1, minZ: minZ - rz*0.1, rangeX: rx * 1.2, rangeZ: rz * 1.2}
}

func (b bounds) project(p mgl64.Vec3, w, h int) (float64, float64) {
	return (p[0] - b.minX) / b.rangeX * float64(w),
		float64(h) - (p[2]-b.minZ)/b.rangeZ*float64(h)
}

func (b bounds) path(sb *strings.Builder, track []mgl64.Vec3, w, h int, stroke string, dashed bool) {
	if len(track) < 2 {
		return
	}
	dash := ""
	if dashed {
		dash = ` stroke-dasharray="4 3"`
	}
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="1.5"%s d="M`, stroke, dash)
	for i, p := range track {
		x, y := b.project(p, w, h)
		if i == 0 {
			fmt.Fprintf(sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")
}

// RunToSVG draws a top-down view of a run: the end point track dashed, the
// body track solid, a marker where each group step started and the final
// foot positions.
func RunToSVG(res *scenario.Result, width, height int) string {
	if res == nil || len(res.Samples) < 2 {
		return ""
	}
	body := make([]mgl64.Vec3, len(res.Samples))
	end := make([]mgl64.Vec3, len(res.Samples))
	for i, s := range res.Samples {
		body[i], end[i] = s.Body, s.EndPoint
	}
	b := boundsOf(body, end, res.Feet)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	b.path(&sb, end, width, height, "#666688", true)
	b.path(&sb, body, width, height, "#00ffff", false)

	sb.WriteString("<g fill=\"#ff00ff\">\n")
	for _, ev := range res.Steps {
		p, ok := bodyAt(res.Samples, ev)
		if !ok {
			continue
		}
		x, y := b.project(p, width, height)
		r := 1.5
		if ev.Group == creeper.NoGroup {
			r = 4
		}
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", x, y, r)
	}
	sb.WriteString("</g>\n<g fill=\"#ffff00\">\n")
	for _, f := range res.Feet {
		x, y := b.project(f, width, height)
		fmt.Fprintf(&sb, "<rect x=\"%.1f\" y=\"%.1f\" width=\"3\" height=\"3\"/>\n", x-1.5, y-1.5)
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// bodyAt finds the body position recorded at a step's time.
func bodyAt(samples []scenario.Sample, ev creeper.StepEvent) (mgl64.Vec3, bool) {
	for _, s := range samples {
		if s.Time >= ev.Time {
			return s.Body, true
		}
	}
	return mgl64.Vec3{}, false
}
