package compute

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/physics"
	"go.uber.org/zap"
)

// Backend executes one pass over the orbiter range [1, n) and returns only
// after every body of that pass has been written. Index 0 is never written.
type Backend interface {
	Name() string
	Available() bool
	Supports(force physics.ForceModel) bool
	Accelerate(ctx context.Context, snap physics.Snapshot, acc []mgl32.Vec3, force physics.ForceModel) error
	Velocity(ctx context.Context, vel, acc []mgl32.Vec3, dt float32) error
	Position(ctx context.Context, pos, vel []mgl32.Vec3, dt float32) error
	Close() error
}

const (
	BackendCPU    = "cpu"
	BackendOpenGL = "opengl"
)

func Backends() []string {
	return []string{BackendCPU, BackendOpenGL}
}

// Open initializes the named backend. workers only applies to cpu; zero
// means one per CPU.
func Open(name string, workers int, log *zap.Logger) (Backend, error) {
	if log == nil {
		log = zap.NewNop()
	}

	switch name {
	case BackendCPU:
		return NewCPUBackend(workers), nil
	case BackendOpenGL:
		gl, err := OpenOpenGL(log)
		if err != nil {
			return nil, err
		}
		return gl, nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", dynamo.ErrInvalidConfig, name)
	}
}
