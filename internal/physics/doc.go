// Package physics provides the force models and diagnostics shared by the
// sequential integrator and the parallel pipeline.
//
// Each model implements [ForceModel], evaluating the acceleration of one
// body from a [Snapshot] of positions and masses:
//
//   - [Gravity]: softened inverse-square law summed over every other body
//   - [Kinematic]: no force evaluation; the stored acceleration is kept
//
// # Energy Conservation
//
// Use [Energy] to monitor drift. The potential uses the same softened
// separation as the force law, so the pair is consistent:
//
//	ke, pe := physics.Energy(store, physics.Gravity{G: g, Epsilon: eps})
//	total := ke + pe
package physics
