package viz

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	minZoom = 0.1
	maxZoom = 20
)

// Camera looks down -z at the origin from Position, with the scene tilted
// about x and turned about y.
type Camera struct {
	Position  mgl32.Vec3
	Tilt, Yaw float32
	FOV       float32
	Near, Far float32
	Zoom      float32
}

func NewCamera() *Camera {
	return &Camera{
		Position: mgl32.Vec3{0, 0, 600},
		Tilt:     mgl32.DegToRad(10),
		FOV:      mgl32.DegToRad(45),
		Near:     0.1,
		Far:      5000,
		Zoom:     1,
	}
}

func (c *Camera) RotateX(a float32) { c.Tilt += a }
func (c *Camera) RotateY(a float32) { c.Yaw += a }
func (c *Camera) ZoomIn()           { c.Zoom = min(maxZoom, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = max(minZoom, c.Zoom/1.2) }

func (c *Camera) View() mgl32.Mat4 {
	eye := c.Position.Mul(1 / c.Zoom)
	m := mgl32.Translate3D(-eye[0], -eye[1], -eye[2])
	m = m.Mul4(mgl32.HomogRotate3DX(c.Tilt))
	return m.Mul4(mgl32.HomogRotate3DY(c.Yaw))
}

func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// Project maps a world point to a w by h raster. ok is false for points
// behind the camera, outside the depth range or off screen.
func (c *Camera) Project(p mgl32.Vec3, w, h int) (x, y int, depth float32, ok bool) {
	if w <= 0 || h <= 0 {
		return 0, 0, 0, false
	}
	mvp := c.Projection(float32(w) / float32(h)).Mul4(c.View())
	clip := mvp.Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, 0, false
	}

	ndc := clip.Vec3().Mul(1 / clip.W())
	if ndc.Z() < -1 || ndc.Z() > 1 {
		return 0, 0, 0, false
	}

	x = int((ndc.X() + 1) / 2 * float32(w))
	y = int((1 - ndc.Y()) / 2 * float32(h))
	return x, y, ndc.Z(), x >= 0 && x < w && y >= 0 && y < h
}
