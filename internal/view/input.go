package view

import "github.com/san-kum/gravsim/internal/vmath"

// Input is one frame of user intent, already decoded from whichever device
// produced it. Edge-triggered fields are true only on the frame the key went
// down.
type Input struct {
	Drag      vmath.Vec2 // pointer motion in pixels while the pan button is held
	Wheel     float64
	Pan       vmath.Vec2 // analog pan, world y up, each axis in [-1, 1]
	StickZoom float64

	ZoomIn   bool
	ZoomOut  bool
	Pause    bool
	Recenter bool
	Faster   bool
	Slower   bool
}

// KeyPan turns held direction keys into a unit-per-axis pan, world y up.
func KeyPan(up, down, left, right bool) vmath.Vec2 {
	var p vmath.Vec2
	if up {
		p.Y++
	}
	if down {
		p.Y--
	}
	if left {
		p.X--
	}
	if right {
		p.X++
	}
	return p
}

// Apply updates the camera from one frame of input. frame is the wall time
// the frame took, used to scale analog input.
func (c *Camera) Apply(in Input, frame float64) {
	if in.Drag != vmath.Zero {
		c.Drag(in.Drag.X, in.Drag.Y)
	}
	switch {
	case in.Wheel > 0 || in.ZoomIn:
		c.ZoomIn()
	case in.Wheel < 0 || in.ZoomOut:
		c.ZoomOut()
	}
	if in.Pan != vmath.Zero || in.StickZoom != 0 {
		c.Stick(in.Pan, in.StickZoom, frame)
	}

	if in.Pause {
		c.TogglePause()
	}
	if in.Recenter {
		c.Recenter()
	}
	if in.Faster {
		c.Faster()
	}
	if in.Slower {
		c.Slower()
	}
}
