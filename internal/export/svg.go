package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/gravsim/internal/nbody"
)

const padding = 0.1

type bounds struct {
	minX, minY, maxX, maxY float64
}

func (b bounds) pad() bounds {
	w, h := b.maxX-b.minX, b.maxY-b.minY
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	return bounds{b.minX - w*padding, b.minY - h*padding, b.maxX + w*padding, b.maxY + h*padding}
}

// square widens the shorter side so both axes share one scale.
func (b bounds) square() bounds {
	w, h := b.maxX-b.minX, b.maxY-b.minY
	cx, cy := (b.minX+b.maxX)/2, (b.minY+b.maxY)/2
	s := math.Max(w, h) / 2
	return bounds{cx - s, cy - s, cx + s, cy + s}
}

// BodiesToSVG draws each body as a filled circle of its physical radius,
// framed to fit all of them. Heavier bodies are drawn warmer. World y points
// up, so it is flipped for SVG.
func BodiesToSVG(bodies []nbody.Body, size int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, size, size, size, size))

	if len(bodies) > 0 {
		b := bounds{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
		maxMass := 0.0
		for _, body := range bodies {
			b.minX = math.Min(b.minX, body.Pos.X-body.Radius)
			b.minY = math.Min(b.minY, body.Pos.Y-body.Radius)
			b.maxX = math.Max(b.maxX, body.Pos.X+body.Radius)
			b.maxY = math.Max(b.maxY, body.Pos.Y+body.Radius)
			maxMass = math.Max(maxMass, body.Mass)
		}
		b = b.pad().square()
		scale := float64(size) / (b.maxX - b.minX)

		sb.WriteString("<g stroke=\"none\">\n")
		for _, body := range bodies {
			cx := (body.Pos.X - b.minX) * scale
			cy := float64(size) - (body.Pos.Y-b.minY)*scale
			r := math.Max(body.Radius*scale, 0.5)
			sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"><title>body %d mass %.2f</title></circle>
`, cx, cy, r, massColor(body.Mass/maxMass), body.Index, body.Mass))
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// massColor blends from blue to orange as frac goes from 0 to 1.
func massColor(frac float64) string {
	frac = math.Max(0, math.Min(1, frac))
	r := int(80 + frac*175)
	g := int(160 - frac*40)
	b := int(255 - frac*215)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// SeriesToSVG plots values against times as a single polyline.
func SeriesToSVG(times, values []float64, width, height int, strokeColor string) string {
	n := min(len(times), len(values))
	if n < 2 {
		return ""
	}

	b := bounds{times[0], values[0], times[0], values[0]}
	for i := 0; i < n; i++ {
		b.minX = math.Min(b.minX, times[i])
		b.maxX = math.Max(b.maxX, times[i])
		b.minY = math.Min(b.minY, values[i])
		b.maxY = math.Max(b.maxY, values[i])
	}
	b = b.pad()
	rangeX, rangeY := b.maxX-b.minX, b.maxY-b.minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i := 0; i < n; i++ {
		x := (times[i] - b.minX) / rangeX * float64(width)
		y := float64(height) - (values[i]-b.minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
