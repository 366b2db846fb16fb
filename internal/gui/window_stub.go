//go:build !opengl

package gui

import (
	"context"
	"fmt"

	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/sim"
	"go.uber.org/zap"
)

type Window struct{}

// Open fails without the opengl build tag.
func Open(int, int, string, *zap.Logger) (*Window, error) {
	return nil, fmt.Errorf("%w: built without opengl", dynamo.ErrBackendUnavailable)
}

func (w *Window) Run(context.Context, *sim.Driver) error { return dynamo.ErrBackendUnavailable }
func (w *Window) Close() error                           { return nil }
