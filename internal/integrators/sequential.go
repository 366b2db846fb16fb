package integrators

import (
	"context"

	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/physics"
)

// Sequential advances orbiters one at a time on the calling goroutine.
// Each pass covers bodies 1..N before the next pass begins; the anchor at
// index 0 is never advanced.
type Sequential struct {
	force physics.ForceModel
	dt    float32
	hook  dynamo.PassHook
}

func NewSequential(force physics.ForceModel, dt float32) *Sequential {
	return &Sequential{force: force, dt: dt}
}

func (s *Sequential) Name() string { return "sequential" }

// SetPassHook installs a callback run after each pass settles.
func (s *Sequential) SetPassHook(h dynamo.PassHook) { s.hook = h }

func (s *Sequential) Step(ctx context.Context, st *dynamo.Store) error {
	for _, p := range dynamo.Passes {
		if err := ctx.Err(); err != nil {
			return &dynamo.PassError{Pass: p, Wrapped: err}
		}

		switch p {
		case dynamo.PassAcceleration:
			s.accelerate(st)
		case dynamo.PassVelocity:
			s.velocity(st)
		case dynamo.PassPosition:
			s.position(st)
		}

		if s.hook != nil {
			s.hook(p, st)
		}
	}
	return nil
}

// Positions do not change during this pass, so the live columns already
// form a consistent snapshot.
func (s *Sequential) accelerate(st *dynamo.Store) {
	snap := physics.Snapshot{Positions: st.Positions(), Masses: st.Masses()}
	acc := st.Accelerations()
	for i := 1; i < len(acc); i++ {
		acc[i] = s.force.Accelerate(snap, i, acc[i])
	}
}

func (s *Sequential) velocity(st *dynamo.Store) {
	vel := st.Velocities()
	acc := st.Accelerations()
	for i := 1; i < len(vel); i++ {
		vel[i] = vel[i].Add(acc[i].Mul(s.dt))
	}
}

func (s *Sequential) position(st *dynamo.Store) {
	pos := st.Positions()
	vel := st.Velocities()
	for i := 1; i < len(pos); i++ {
		pos[i] = pos[i].Add(vel[i].Mul(s.dt))
	}
}
