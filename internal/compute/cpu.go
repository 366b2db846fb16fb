package compute

import (
	"context"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/nbodysim/internal/physics"
	"golang.org/x/sync/errgroup"
)

// minChunk keeps tiny populations from paying goroutine overhead per body.
const minChunk = 64

type CPUBackend struct {
	workers int
}

func NewCPUBackend(workers int) *CPUBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CPUBackend{workers: workers}
}

func (c *CPUBackend) Name() string                     { return "cpu" }
func (c *CPUBackend) Available() bool                  { return true }
func (c *CPUBackend) Supports(physics.ForceModel) bool { return true }
func (c *CPUBackend) Close() error                     { return nil }
func (c *CPUBackend) Workers() int                     { return c.workers }

func (c *CPUBackend) Accelerate(ctx context.Context, snap physics.Snapshot, acc []mgl32.Vec3, force physics.ForceModel) error {
	return c.dispatch(ctx, len(acc), func(start, end int) {
		for i := start; i < end; i++ {
			acc[i] = force.Accelerate(snap, i, acc[i])
		}
	})
}

func (c *CPUBackend) Velocity(ctx context.Context, vel, acc []mgl32.Vec3, dt float32) error {
	return c.dispatch(ctx, len(vel), func(start, end int) {
		for i := start; i < end; i++ {
			vel[i] = vel[i].Add(acc[i].Mul(dt))
		}
	})
}

func (c *CPUBackend) Position(ctx context.Context, pos, vel []mgl32.Vec3, dt float32) error {
	return c.dispatch(ctx, len(pos), func(start, end int) {
		for i := start; i < end; i++ {
			pos[i] = pos[i].Add(vel[i].Mul(dt))
		}
	})
}

// dispatch splits [1, n) into contiguous chunks, runs them on the worker
// pool and waits for all of them. Chunks write disjoint index ranges.
func (c *CPUBackend) dispatch(ctx context.Context, n int, fn func(start, end int)) error {
	orbiters := n - 1
	if orbiters <= 0 {
		return ctx.Err()
	}

	chunk := (orbiters + c.workers - 1) / c.workers
	if chunk < minChunk {
		chunk = minChunk
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for start := 1; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(start, end)
			return nil
		})
	}

	return g.Wait()
}
