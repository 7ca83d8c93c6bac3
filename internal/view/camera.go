// Package view holds the presentation state shared by the live renderers:
// camera offset, zoom, time scale, pause and elapsed simulated time.
package view

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/nbody"
	"github.com/san-kum/gravsim/internal/vmath"
)

const (
	ZoomStep      = 0.1
	MinZoom       = 2 * ZoomStep
	TimeScaleStep = 0.25

	// PanSpeed and StickZoomSpeed are per second of wall time at full stick.
	PanSpeed       = 100.0
	StickZoomSpeed = 0.2

	// MaxFrame caps the wall time fed to one Update after a stall.
	MaxFrame = 0.1
)

// Camera maps world coordinates to a screen of Width x Height pixels. Pos is
// an offset in screen pixels; world y points up, screen y points down.
type Camera struct {
	Pos       vmath.Vec2
	Zoom      float64
	TimeScale float64
	Paused    bool
	TotalTime float64
	Width     int
	Height    int
}

func NewCamera(width, height int) *Camera {
	return &Camera{Zoom: 1, TimeScale: 1, Width: width, Height: height}
}

func (c *Camera) Resize(width, height int) {
	c.Width, c.Height = width, height
}

// Drag moves the view with the pointer: content follows the mouse.
func (c *Camera) Drag(dx, dy float64) {
	c.Pos = c.Pos.Add(vmath.Vec2{X: -dx, Y: dy})
}

func (c *Camera) Pan(dx, dy float64) {
	c.Pos = c.Pos.Add(vmath.Vec2{X: dx, Y: dy})
}

// Stick applies analog pan and zoom input over a frame of wall time.
func (c *Camera) Stick(pan vmath.Vec2, zoom, frame float64) {
	c.Pos = c.Pos.Add(pan.Scale(PanSpeed * frame))
	c.setZoom(c.Zoom + zoom*StickZoomSpeed*frame)
}

func (c *Camera) ZoomIn() { c.Zoom += ZoomStep }

// ZoomOut stops once the zoom is at the floor.
func (c *Camera) ZoomOut() {
	if c.Zoom > MinZoom+1e-9 {
		c.setZoom(c.Zoom - ZoomStep)
	}
}

func (c *Camera) setZoom(z float64) {
	c.Zoom = math.Max(z, MinZoom)
}

func (c *Camera) Faster() { c.TimeScale += TimeScaleStep }

// Slower never takes the time scale below zero.
func (c *Camera) Slower() { c.TimeScale = math.Max(c.TimeScale-TimeScaleStep, 0) }

func (c *Camera) TogglePause() { c.Paused = !c.Paused }

func (c *Camera) Recenter() { c.Pos = vmath.Zero }

// Fit picks the zoom that shows a disc of the given radius around the origin.
func (c *Camera) Fit(extent float64) {
	if extent <= 0 {
		return
	}
	side := float64(min(c.Width, c.Height))
	c.setZoom(side / (2 * extent))
}

// Advance steps s by one frame of wall time scaled by TimeScale, unless
// paused. It returns the simulated time added.
func (c *Camera) Advance(s *nbody.Simulation, frame float64) float64 {
	if c.Paused {
		return 0
	}
	dt := c.TimeScale * math.Min(frame, MaxFrame)
	s.Update(dt)
	c.TotalTime += dt
	return dt
}

// Reset clears the elapsed time; the camera position and zoom are kept.
func (c *Camera) Reset() {
	c.TotalTime = 0
}

func (c *Camera) WorldToScreen(p vmath.Vec2) (float64, float64) {
	x := c.Zoom*p.X + float64(c.Width)/2 - c.Pos.X
	y := -c.Zoom*p.Y + float64(c.Height)/2 + c.Pos.Y
	return x, y
}

func (c *Camera) ScreenToWorld(x, y float64) vmath.Vec2 {
	return vmath.Vec2{
		X: (x - float64(c.Width)/2 + c.Pos.X) / c.Zoom,
		Y: -(y - float64(c.Height)/2 - c.Pos.Y) / c.Zoom,
	}
}

// Scale converts a world length to pixels.
func (c *Camera) Scale(length float64) float64 {
	return c.Zoom * length
}

// Visible reports whether a disc of radius r at p overlaps the screen.
func (c *Camera) Visible(p vmath.Vec2, r float64) bool {
	x, y := c.WorldToScreen(p)
	rr := c.Scale(r)
	return x+rr >= 0 && x-rr <= float64(c.Width) && y+rr >= 0 && y-rr <= float64(c.Height)
}

// HUD returns the status lines shown over the view. An empty string marks a
// spacer row.
func (c *Camera) HUD(s *nbody.Simulation) []string {
	paused := ""
	if c.Paused {
		paused = "PAUSED"
	}
	return []string{
		fmt.Sprintf("Seed: %d", s.Seed()),
		"",
		fmt.Sprintf("Total time: %.2f", c.TotalTime),
		fmt.Sprintf("TimeScale: x%.2f", c.TimeScale),
		"",
		paused,
		"",
		fmt.Sprintf("Camera: (%.0f, %.0f)", c.Pos.X, c.Pos.Y),
		fmt.Sprintf("Zoom: x%.1f", c.Zoom),
		fmt.Sprintf("Bodies: %d/%d", s.ActiveCount(), s.Len()),
		fmt.Sprintf("Merges: %d", s.Merges()),
	}
}
