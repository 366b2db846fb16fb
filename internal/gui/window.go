//go:build opengl

package gui

import (
	"context"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/sim"
	"go.uber.org/zap"
)

var (
	ColBg     = rl.NewColor(10, 10, 10, 255)
	ColAnchor = rl.NewColor(255, 204, 0, 255)
	ColBody   = rl.NewColor(180, 180, 180, 255)
	ColGrid   = rl.NewColor(30, 30, 30, 255)
	ColText   = rl.NewColor(140, 140, 140, 255)
)

// Window draws the scene as spheres in a raylib window. It must be opened,
// driven and closed from the same goroutine.
type Window struct {
	camera  rl.Camera3D
	running bool
	orbit   bool
	anchor  bool
	log     *zap.Logger
}

func Open(width, height int, title string, log *zap.Logger) (*Window, error) {
	if log == nil {
		log = zap.NewNop()
	}
	runtime.LockOSThread()

	rl.SetTraceLogLevel(rl.LogWarning)
	rl.SetConfigFlags(rl.FlagMsaa4xHint)
	rl.InitWindow(int32(width), int32(height), title)
	if !rl.IsWindowReady() {
		runtime.UnlockOSThread()
		return nil, dynamo.ErrBackendUnavailable
	}
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)

	w := &Window{
		camera: rl.NewCamera3D(
			rl.NewVector3(0, 200, 600),
			rl.NewVector3(0, 0, 0),
			rl.NewVector3(0, 1, 0),
			45,
			rl.CameraPerspective,
		),
		running: true,
		log:     log,
	}
	log.Info("window opened", zap.Int("width", width), zap.Int("height", height))
	return w, nil
}

func (w *Window) BeginFrame() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)
	rl.BeginMode3D(w.camera)
	rl.DrawGrid(20, 50)
	w.anchor = true
}

// DrawBody draws a sphere at the translation of world; the first body of
// each frame is the anchor.
func (w *Window) DrawBody(world mgl32.Mat4) {
	p := world.Col(3)
	radius := world.Col(0).Vec3().Len() / 2
	col := ColBody
	if w.anchor {
		col, w.anchor = ColAnchor, false
	}
	rl.DrawSphere(rl.NewVector3(p.X(), p.Y(), p.Z()), radius, col)
}

func (w *Window) EndFrame() error {
	rl.EndMode3D()
	rl.DrawFPS(10, 10)
	rl.DrawText("SPACE pause  O orbit  Q quit", 10, 34, 16, ColText)
	rl.EndDrawing()
	return nil
}

// Run advances d one frame per window refresh until the window closes, Q is
// pressed or ctx is done. Paused frames redraw without ticking.
func (w *Window) Run(ctx context.Context, d *sim.Driver) error {
	d.SetRenderer(w)
	for !rl.WindowShouldClose() && ctx.Err() == nil {
		if rl.IsKeyPressed(rl.KeyQ) {
			return nil
		}
		if rl.IsKeyPressed(rl.KeySpace) {
			w.running = !w.running
		}
		if rl.IsKeyPressed(rl.KeyO) {
			w.orbit = !w.orbit
		}
		if w.orbit {
			rl.UpdateCamera(&w.camera, rl.CameraOrbital)
		}

		var err error
		if w.running {
			err = d.Frame(ctx)
		} else {
			err = d.Scene().Render(w)
		}
		if err != nil {
			w.log.Error("frame failed", zap.Uint64("tick", d.Ticks()), zap.Error(err))
			return err
		}
	}
	return nil
}

func (w *Window) Close() error {
	rl.CloseWindow()
	runtime.UnlockOSThread()
	return nil
}
