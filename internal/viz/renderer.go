package viz

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TermRenderer rasterizes body world matrices onto a braille canvas.
type TermRenderer struct {
	canvas *Canvas
	camera *Camera
	frame  string
	drawn  int
	culled int
}

func NewTermRenderer(cols, rows int, cam *Camera) *TermRenderer {
	if cam == nil {
		cam = NewCamera()
	}
	return &TermRenderer{canvas: NewCanvas(cols, rows), camera: cam}
}

func (r *TermRenderer) Camera() *Camera { return r.camera }
func (r *TermRenderer) Canvas() *Canvas { return r.canvas }

func (r *TermRenderer) BeginFrame() {
	r.canvas.Clear()
	r.drawn, r.culled = 0, 0
}

// DrawBody plots one body at the translation of world; bodies scaled to
// two units or more are drawn as discs.
func (r *TermRenderer) DrawBody(world mgl32.Mat4) {
	w, h := r.canvas.Dots()
	pos := world.Col(3).Vec3()
	x, y, _, ok := r.camera.Project(pos, w, h)
	if !ok {
		r.culled++
		return
	}

	scale := world.Col(0).Vec3().Len()
	r.canvas.DrawDisc(x, y, int(scale/2))
	r.drawn++
}

func (r *TermRenderer) EndFrame() error {
	r.frame = r.canvas.String()
	return nil
}

// Frame returns the last completed frame.
func (r *TermRenderer) Frame() string { return r.frame }

// Stats reports how many bodies were drawn and culled in the last frame.
func (r *TermRenderer) Stats() (drawn, culled int) { return r.drawn, r.culled }
