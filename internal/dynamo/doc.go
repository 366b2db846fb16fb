// Package dynamo provides the core state primitives shared by every
// integration strategy.
//
// The package defines:
//
//   - [Store]: column-wise body state (position, velocity, acceleration, mass)
//   - [Pass]: the three ordered sub-stages of a tick
//   - [PassHook]: callback invoked after each pass has fully settled
//   - domain errors such as [ErrIndexOutOfRange] and [TickError]
//
// Index 0 of a [Store] is the anchor body. Strategies never advance it but
// read its mass as a gravity source.
//
// # Example
//
//	st := dynamo.NewStore(n + 1)
//	_ = st.SetMass(0, anchorMass)
//	_ = st.SetPosition(1, mgl32.Vec3{30, 0, 0})
//
// # Thread Safety
//
// Store is NOT safe for concurrent mutation. During a tick the active
// strategy owns it exclusively; parallel strategies partition writes by body
// index so no two workers touch the same element.
package dynamo
