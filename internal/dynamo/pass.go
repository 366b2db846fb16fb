package dynamo

// Pass is one of the three ordered sub-stages of a tick.
type Pass int

const (
	PassNone         Pass = iota
	PassAcceleration      // recompute accelerations from a position snapshot
	PassVelocity          // v' = v + a*dt
	PassPosition          // p' = p + v'*dt
)

func (p Pass) String() string {
	switch p {
	case PassAcceleration:
		return "acceleration"
	case PassVelocity:
		return "velocity"
	case PassPosition:
		return "position"
	default:
		return "none"
	}
}

// Passes lists the passes in execution order.
var Passes = [...]Pass{PassAcceleration, PassVelocity, PassPosition}

// PassHook runs after a pass has settled for every body and before the next
// pass starts. It may read or mutate the store.
type PassHook func(p Pass, st *Store)
