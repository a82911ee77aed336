package analysis

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// TrackToASCII draws two tracks seen from above (X right, Z up): the end
// point as '·' and the body as '•'. Cells both pass through show the body.
func TrackToASCII(body, end []mgl64.Vec3, width, height int) string {
	if width < 2 || height < 2 || len(body)+len(end) == 0 {
		return ""
	}

	first := body
	if len(first) == 0 {
		first = end
	}
	minX, maxX := first[0][0], first[0][0]
	minZ, maxZ := first[0][2], first[0][2]
	for _, track := range [][]mgl64.Vec3{body, end} {
		for _, p := range track {
			minX, maxX = min(minX, p[0]), max(maxX, p[0])
			minZ, maxZ = min(minZ, p[2]), max(maxZ, p[2])
		}
	}

	rangeX := maxX - minX
	rangeZ := maxZ - minZ
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeZ == 0 {
		rangeZ = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minZ -= rangeZ * 0.1
	maxZ += rangeZ * 0.1
	rangeX = maxX - minX
	rangeZ = maxZ - minZ

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}
	plot := func(track []mgl64.Vec3, r rune) {
		for _, p := range track {
			col := int((p[0] - minX) / rangeX * float64(width-1))
			row := height - 1 - int((p[2]-minZ)/rangeZ*float64(height-1))
			if row >= 0 && row < height && col >= 0 && col < width {
				canvas[row][col] = r
			}
		}
	}
	plot(end, '·')
	plot(body, '•')

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
