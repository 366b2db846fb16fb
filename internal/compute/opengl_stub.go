//go:build !opengl

package compute

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/physics"
	"go.uber.org/zap"
)

var errNoOpenGL = fmt.Errorf("%w: opengl (built without -tags opengl)", dynamo.ErrBackendUnavailable)

type OpenGLBackend struct{}

func OpenOpenGL(log *zap.Logger) (*OpenGLBackend, error) {
	return nil, errNoOpenGL
}

func (g *OpenGLBackend) Name() string                     { return "opengl (not available)" }
func (g *OpenGLBackend) Available() bool                  { return false }
func (g *OpenGLBackend) Supports(physics.ForceModel) bool { return false }
func (g *OpenGLBackend) Close() error                     { return nil }

func (g *OpenGLBackend) Accelerate(context.Context, physics.Snapshot, []mgl32.Vec3, physics.ForceModel) error {
	return errNoOpenGL
}

func (g *OpenGLBackend) Velocity(context.Context, []mgl32.Vec3, []mgl32.Vec3, float32) error {
	return errNoOpenGL
}

func (g *OpenGLBackend) Position(context.Context, []mgl32.Vec3, []mgl32.Vec3, float32) error {
	return errNoOpenGL
}
