package export

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/nbodysim/internal/sim"
)

// Trails records the positions of a few bodies after every tick.
type Trails struct {
	bodies []int
	limit  int
	paths  [][]mgl32.Vec3
}

// NewTrails follows the given body indices, keeping at most limit points
// per body (0 keeps everything).
func NewTrails(limit int, bodies ...int) *Trails {
	return &Trails{bodies: bodies, limit: limit, paths: make([][]mgl32.Vec3, len(bodies))}
}

func (t *Trails) OnTick(info sim.TickInfo) {
	for i, b := range t.bodies {
		p, err := info.Store.Position(b)
		if err != nil {
			continue
		}
		t.paths[i] = append(t.paths[i], p)
		if t.limit > 0 && len(t.paths[i]) > t.limit {
			t.paths[i] = t.paths[i][1:]
		}
	}
}

func (t *Trails) Paths() [][]mgl32.Vec3 { return t.paths }
