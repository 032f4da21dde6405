package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/sim"
)

var bodyColors = [physics.NumBodies]string{"#00ff00", "#00aaff", "#ff5555"}

// OrbitSVG renders the three orbit traces into one SVG, sharing a common
// bounding box so relative geometry is preserved. Y is flipped so the
// physics convention (y up) matches screen coordinates.
func OrbitSVG(tr *sim.Trajectory, width, height int) string {
	if tr == nil || tr.Len() < 2 {
		return ""
	}

	minX, maxX := tr.At(0).State[0], tr.At(0).State[0]
	minY, maxY := tr.At(0).State[1], tr.At(0).State[1]
	for _, sample := range tr.Samples() {
		for b := 0; b < physics.NumBodies; b++ {
			x, y := sample.State[b*4], sample.State[b*4+1]
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for b := 0; b < physics.NumBodies; b++ {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, bodyColors[b]))
		for i, sample := range tr.Samples() {
			x := (sample.State[b*4] - minX) / rangeX * float64(width)
			y := float64(height) - (sample.State[b*4+1]-minY)/rangeY*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	// Final positions as filled markers.
	final := tr.Final()
	for b := 0; b < physics.NumBodies; b++ {
		cx := (final.State[b*4] - minX) / rangeX * float64(width)
		cy := float64(height) - (final.State[b*4+1]-minY)/rangeY*float64(height)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>
`, cx, cy, bodyColors[b]))
	}

	sb.WriteString("</svg>")
	return sb.String()
}
