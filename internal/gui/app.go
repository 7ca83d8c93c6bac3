package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/nbody"
	"github.com/san-kum/gravsim/internal/view"
	"github.com/san-kum/gravsim/internal/vmath"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColGrid    = rl.NewColor(30, 30, 30, 255)
	ColWarn    = rl.NewColor(255, 170, 0, 255)
)

// stickDeadzone ignores analog drift around the rest position.
const stickDeadzone = 0.15

type App struct {
	Cfg         *config.Config
	Sim         *nbody.Simulation
	Camera      *view.Camera
	ShowVectors bool
	Err         error

	maxMass float64
	quit    bool
}

func initWindow(v config.ViewConfig) {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(v.Width), int32(v.Height), "gravsim")
	rl.SetTargetFPS(int32(v.FPS))
	rl.SetExitKey(0)
}

// NewApp samples the bodies for cfg. It does not touch the window, so it can
// be called before InitWindow.
func NewApp(cfg *config.Config) (*App, error) {
	a := &App{Cfg: cfg}
	if err := a.reset(); err != nil {
		return nil, err
	}
	a.Camera = view.NewCamera(cfg.View.Width, cfg.View.Height)
	a.Camera.Zoom = cfg.View.Zoom
	a.Camera.TimeScale = cfg.TimeScale
	return a, nil
}

// Run opens the window and blocks until it is closed.
func Run(cfg *config.Config) error {
	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	initWindow(cfg.View)
	defer rl.CloseWindow()
	app.RunLoop()
	return app.Err
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() && !a.quit {
		a.Update()
		a.Draw()
	}
}

func (a *App) reset() error {
	s, err := nbody.FromConfig(a.Cfg.Sampling(), a.Cfg.Seed)
	if err != nil {
		return err
	}
	a.Sim = s
	a.maxMass = a.Cfg.InitState.MaxMass
	if a.Camera != nil {
		a.Camera.Reset()
	}
	return nil
}

func (a *App) Update() {
	a.Camera.Resize(rl.GetScreenWidth(), rl.GetScreenHeight())
	frame := float64(rl.GetFrameTime())

	if rl.IsKeyPressed(rl.KeyEscape) || rl.IsKeyPressed(rl.KeyQ) {
		a.quit = true
		return
	}
	if rl.IsKeyPressed(rl.KeyV) {
		a.ShowVectors = !a.ShowVectors
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if err := a.reset(); err != nil {
			a.Err = err
			a.quit = true
			return
		}
	}

	a.Camera.Apply(pollInput(), frame)
	a.Camera.Advance(a.Sim, frame)

	if a.Cfg.ValidateState && !a.Sim.Valid() {
		a.Err = nbody.ErrInvalidState
		a.quit = true
	}
}

func pollInput() view.Input {
	in := view.Input{
		Wheel:    float64(rl.GetMouseWheelMove()),
		ZoomIn:   rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd),
		ZoomOut:  rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract),
		Pause:    rl.IsKeyPressed(rl.KeySpace),
		Recenter: rl.IsKeyPressed(rl.KeyC),
		Faster:   rl.IsKeyPressed(rl.KeyRight),
		Slower:   rl.IsKeyPressed(rl.KeyLeft),
	}
	in.Pan = view.KeyPan(
		rl.IsKeyDown(rl.KeyW), rl.IsKeyDown(rl.KeyS),
		rl.IsKeyDown(rl.KeyA), rl.IsKeyDown(rl.KeyD),
	)
	if rl.IsMouseButtonDown(rl.MouseLeftButton) || rl.IsMouseButtonDown(rl.MouseRightButton) {
		d := rl.GetMouseDelta()
		in.Drag = vmath.Vec2{X: float64(d.X), Y: float64(d.Y)}
	}

	const pad = 0
	if rl.IsGamepadAvailable(pad) {
		// raylib reports stick y growing downwards
		lx := deadzone(rl.GetGamepadAxisMovement(pad, rl.GamepadAxisLeftX))
		ly := deadzone(rl.GetGamepadAxisMovement(pad, rl.GamepadAxisLeftY))
		ry := deadzone(rl.GetGamepadAxisMovement(pad, rl.GamepadAxisRightY))
		in.Pan = in.Pan.Add(vmath.Vec2{X: lx, Y: -ly})
		in.StickZoom = -ry

		in.Pause = in.Pause || rl.IsGamepadButtonPressed(pad, rl.GamepadButtonMiddleRight)
		in.Faster = in.Faster || rl.IsGamepadButtonPressed(pad, rl.GamepadButtonRightTrigger1)
		in.Slower = in.Slower || rl.IsGamepadButtonPressed(pad, rl.GamepadButtonLeftTrigger1)
	}
	return in
}

func deadzone(v float32) float64 {
	if v > -stickDeadzone && v < stickDeadzone {
		return 0
	}
	return float64(v)
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	a.drawAxes()
	a.drawBodies()
	a.drawHUD()

	rl.EndDrawing()
}
