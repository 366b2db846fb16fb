package metrics

import (
	"github.com/san-kum/nbodysim/internal/sim"
)

// Stability reports the fraction of orbiters still within radius of the
// anchor at the latest tick.
type Stability struct {
	name    string
	radius  float32
	escaped int
	total   int
}

func NewStability(radius float32) *Stability {
	return &Stability{
		name:   "bound_fraction",
		radius: radius,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) OnTick(info sim.TickInfo) {
	pos := info.Store.Positions()
	s.escaped = 0
	s.total = len(pos) - 1
	for i := 1; i < len(pos); i++ {
		if pos[i].Sub(pos[0]).Len() > s.radius {
			s.escaped++
		}
	}
}

func (s *Stability) Escaped() int { return s.escaped }

func (s *Stability) Value() float64 {
	if s.total <= 0 {
		return 1.0
	}
	return 1.0 - float64(s.escaped)/float64(s.total)
}

func (s *Stability) Reset() {
	s.escaped = 0
	s.total = 0
}
