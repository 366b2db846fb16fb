package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/nbodysim/internal/dynamo"
)

// Energy returns kinetic and softened potential energy of the whole system,
// accumulated in float64.
func Energy(st *dynamo.Store, g Gravity) (kinetic, potential float64) {
	pos := st.Positions()
	vel := st.Velocities()
	mass := st.Masses()
	eps2 := float64(g.Epsilon) * float64(g.Epsilon)
	gc := float64(g.G)

	for i := range mass {
		mi := float64(mass[i])
		v := vel[i]
		kinetic += 0.5 * mi * dot64(v, v)

		for j := i + 1; j < len(mass); j++ {
			d := pos[j].Sub(pos[i])
			r := math.Sqrt(dot64(d, d) + eps2)
			if r == 0 {
				continue
			}
			potential -= gc * mi * float64(mass[j]) / r
		}
	}

	return kinetic, potential
}

// TotalEnergy is kinetic plus potential energy.
func TotalEnergy(st *dynamo.Store, g Gravity) float64 {
	ke, pe := Energy(st, g)
	return ke + pe
}

func Momentum(st *dynamo.Store) (px, py, pz float64) {
	vel := st.Velocities()
	for i, m := range st.Masses() {
		px += float64(m) * float64(vel[i][0])
		py += float64(m) * float64(vel[i][1])
		pz += float64(m) * float64(vel[i][2])
	}
	return
}

// AngularMomentum returns the z component of total angular momentum about
// the origin.
func AngularMomentum(st *dynamo.Store) float64 {
	pos := st.Positions()
	vel := st.Velocities()
	L := 0.0
	for i, m := range st.Masses() {
		L += float64(m) * (float64(pos[i][0])*float64(vel[i][1]) - float64(pos[i][1])*float64(vel[i][0]))
	}
	return L
}

func dot64(a, b mgl32.Vec3) float64 {
	return float64(a[0])*float64(b[0]) + float64(a[1])*float64(b[1]) + float64(a[2])*float64(b[2])
}
