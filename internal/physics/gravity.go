package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Snapshot is a read-only view of positions and masses taken before any
// body moves in the current tick.
type Snapshot struct {
	Positions []mgl32.Vec3
	Masses    []float32
}

// TakeSnapshot copies positions and masses into dst, reusing its buffers.
func TakeSnapshot(dst *Snapshot, pos []mgl32.Vec3, mass []float32) {
	if cap(dst.Positions) < len(pos) {
		dst.Positions = make([]mgl32.Vec3, len(pos))
	}
	if cap(dst.Masses) < len(mass) {
		dst.Masses = make([]float32, len(mass))
	}
	dst.Positions = dst.Positions[:len(pos)]
	dst.Masses = dst.Masses[:len(mass)]
	copy(dst.Positions, pos)
	copy(dst.Masses, mass)
}

// ForceModel computes the acceleration of body i. current is the
// acceleration stored before the pass.
type ForceModel interface {
	Name() string
	Accelerate(snap Snapshot, i int, current mgl32.Vec3) mgl32.Vec3
}

// Gravity is the softened inverse-square law:
//
//	a_i = sum_j G*m_j*(p_j-p_i) / (|p_j-p_i|^2 + eps^2)^(3/2)
type Gravity struct {
	G       float32
	Epsilon float32
}

func NewGravity(g, epsilon float32) Gravity {
	return Gravity{G: g, Epsilon: epsilon}
}

func (g Gravity) Name() string { return "gravity" }

func (g Gravity) Accelerate(snap Snapshot, i int, _ mgl32.Vec3) mgl32.Vec3 {
	pi := snap.Positions[i]
	eps2 := g.Epsilon * g.Epsilon

	var ax, ay, az float32
	for j, pj := range snap.Positions {
		if j == i {
			continue
		}

		rx := pj[0] - pi[0]
		ry := pj[1] - pi[1]
		rz := pj[2] - pi[2]
		r2 := rx*rx + ry*ry + rz*rz + eps2
		if r2 == 0 {
			// coincident bodies with no softening exert nothing
			continue
		}

		rInv := 1 / float32(math.Sqrt(float64(r2)))
		r3Inv := rInv * rInv * rInv

		f := g.G * snap.Masses[j] * r3Inv
		ax += f * rx
		ay += f * ry
		az += f * rz
	}

	return mgl32.Vec3{ax, ay, az}
}

// Kinematic performs no force summation. Whatever acceleration the body
// carries is integrated as-is.
type Kinematic struct{}

func (Kinematic) Name() string { return "kinematic" }

func (Kinematic) Accelerate(_ Snapshot, _ int, current mgl32.Vec3) mgl32.Vec3 {
	return current
}
