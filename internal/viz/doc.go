// Package viz renders a running simulation in the terminal.
//
// [Model] is a Bubble Tea program that steps the simulation once per frame
// and draws the active bodies on a braille [Canvas], with a lipgloss side
// panel for the status lines and an energy graph.
//
// # Key Bindings
//
//	Space      - Pause/Resume
//	C          - Recenter camera
//	Left/Right - Time scale -/+ 0.25
//	+/-, wheel - Zoom in/out
//	WASD, drag - Pan
//	R          - Reset from the seed
//	T          - Cycle color themes
//	V          - Toggle momentum vectors
//	Q/Esc      - Quit
package viz
