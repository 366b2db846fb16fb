package compute

import (
	"context"
	"fmt"

	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/physics"
	"go.uber.org/zap"
)

// Pipeline is the parallel integration strategy. Each pass is a single
// batch on the backend and must retire before the next one is submitted.
type Pipeline struct {
	backend Backend
	force   physics.ForceModel
	dt      float32
	hook    dynamo.PassHook
	snap    physics.Snapshot
	log     *zap.Logger
}

// NewPipeline validates the backend and force model. An unavailable backend
// is reported as dynamo.ErrBackendUnavailable and never replaced silently.
func NewPipeline(b Backend, force physics.ForceModel, dt float32, log *zap.Logger) (*Pipeline, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if b == nil || !b.Available() {
		name := "<nil>"
		if b != nil {
			name = b.Name()
		}
		return nil, fmt.Errorf("%w: %s", dynamo.ErrBackendUnavailable, name)
	}
	if !b.Supports(force) {
		return nil, fmt.Errorf("%w: %s on %s", dynamo.ErrUnsupportedForce, force.Name(), b.Name())
	}

	log.Debug("parallel pipeline ready",
		zap.String("backend", b.Name()),
		zap.String("force", force.Name()),
		zap.Float32("dt", dt))

	return &Pipeline{backend: b, force: force, dt: dt, log: log}, nil
}

func (p *Pipeline) Name() string { return "parallel/" + p.backend.Name() }

func (p *Pipeline) Backend() Backend { return p.backend }

// SetPassHook installs a callback run after each pass's barrier.
func (p *Pipeline) SetPassHook(h dynamo.PassHook) { p.hook = h }

func (p *Pipeline) Step(ctx context.Context, st *dynamo.Store) error {
	for _, pass := range dynamo.Passes {
		if err := ctx.Err(); err != nil {
			return &dynamo.PassError{Pass: pass, Wrapped: err}
		}

		var err error
		switch pass {
		case dynamo.PassAcceleration:
			physics.TakeSnapshot(&p.snap, st.Positions(), st.Masses())
			err = p.backend.Accelerate(ctx, p.snap, st.Accelerations(), p.force)
		case dynamo.PassVelocity:
			err = p.backend.Velocity(ctx, st.Velocities(), st.Accelerations(), p.dt)
		case dynamo.PassPosition:
			err = p.backend.Position(ctx, st.Positions(), st.Velocities(), p.dt)
		}
		if err != nil {
			return &dynamo.PassError{Pass: pass, Wrapped: err}
		}

		if p.hook != nil {
			p.hook(pass, st)
		}
	}
	return nil
}

func (p *Pipeline) Close() error {
	return p.backend.Close()
}
