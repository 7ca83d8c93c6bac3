package gui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/gravsim/internal/vmath"
)

const (
	hudX        = 10
	hudY        = 10
	hudLine     = 20
	hudFontSize = 20

	// minDotRadius keeps tiny bodies visible when zoomed out.
	minDotRadius = 1.5
	vectorScale  = 1.0
)

func screen(x, y float64) rl.Vector2 {
	return rl.NewVector2(float32(x), float32(y))
}

// drawAxes marks the world origin.
func (a *App) drawAxes() {
	w, h := float32(a.Camera.Width), float32(a.Camera.Height)
	ox, oy := a.Camera.WorldToScreen(vmath.Zero)
	rl.DrawLineV(rl.NewVector2(float32(ox), 0), rl.NewVector2(float32(ox), h), ColGrid)
	rl.DrawLineV(rl.NewVector2(0, float32(oy)), rl.NewVector2(w, float32(oy)), ColGrid)
}

func (a *App) drawBodies() {
	for _, b := range a.Sim.Bodies() {
		if !a.Camera.Visible(b.Pos, b.Radius) {
			continue
		}
		x, y := a.Camera.WorldToScreen(b.Pos)
		r := math.Max(a.Camera.Scale(b.Radius), minDotRadius)
		rl.DrawCircleV(screen(x, y), float32(r), bodyColor(b.Mass, a.maxMass))

		if a.ShowVectors {
			tx, ty := a.Camera.WorldToScreen(b.Pos.Add(b.Velocity().Scale(vectorScale)))
			rl.DrawLineV(screen(x, y), screen(tx, ty), ColTextDim)
		}
	}
}

// bodyColor brightens from the accent grey towards white as mass grows;
// merged bodies heavier than maxMass saturate at white.
func bodyColor(mass, maxMass float64) rl.Color {
	f := 1.0
	if maxMass > 0 {
		f = math.Min(mass/maxMass, 1)
	}
	lerp := func(a, b uint8) uint8 {
		return uint8(float64(a) + f*(float64(b)-float64(a)))
	}
	return rl.NewColor(
		lerp(ColAccent.R, ColSelect.R),
		lerp(ColAccent.G, ColSelect.G),
		lerp(ColAccent.B, ColSelect.B),
		255,
	)
}

func (a *App) drawHUD() {
	for i, line := range a.Camera.HUD(a.Sim) {
		if line == "" {
			continue
		}
		col := ColText
		if line == "PAUSED" {
			col = ColWarn
		}
		rl.DrawText(line, hudX, int32(hudY+i*hudLine), hudFontSize, col)
	}
	rl.DrawFPS(hudX, int32(a.Camera.Height-30))
}
