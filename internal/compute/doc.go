// Package compute provides the parallel force/integration pipeline and the
// backends it dispatches to.
//
// A [Pipeline] runs the three passes of a tick as separate batches with a
// barrier between them:
//
//   - acceleration: softened gravity from a snapshot taken before the pass
//   - velocity: v' = v + a*dt
//   - position: p' = p + v'*dt
//
// Backends:
//
//   - cpu: goroutine worker pool, always available
//   - opengl: GLSL compute kernels, built with -tags opengl
//
// # Failure Policy
//
// A backend that cannot be opened returns an error wrapping
// [dynamo.ErrBackendUnavailable]. The pipeline never substitutes another
// backend on its own; falling back to the sequential integrator is a caller
// decision.
//
//	backend, err := compute.Open("cpu", 0, log)
//	pipe, err := compute.NewPipeline(backend, physics.NewGravity(g, eps), dt, log)
//	err = pipe.Step(ctx, store)
package compute
