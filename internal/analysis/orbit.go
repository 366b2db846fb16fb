package analysis

import (
	"math"

	"github.com/san-kum/nbodysim/internal/sim"
)

// Orbit follows one body's x coordinate and distance from the anchor.
// It satisfies sim.Observer and the metrics.Metric interface.
type Orbit struct {
	body    int
	dt      float64
	xs      []float64
	minR    float64
	maxR    float64
	samples int
}

func NewOrbit(body int, dt float64) *Orbit {
	o := &Orbit{body: body, dt: dt}
	o.Reset()
	return o
}

func (o *Orbit) Name() string { return "orbit_period" }

func (o *Orbit) OnTick(info sim.TickInfo) {
	p, err := info.Store.Position(o.body)
	if err != nil {
		return
	}
	o.xs = append(o.xs, float64(p.X()))

	r := float64(p.Len())
	o.minR = math.Min(o.minR, r)
	o.maxR = math.Max(o.maxR, r)
	o.samples++
}

// Value is the estimated orbital period in simulation time units.
func (o *Orbit) Value() float64 { return DominantPeriod(o.xs, o.dt) }

// Eccentricity estimates (rmax - rmin) / (rmax + rmin) from the observed
// radii.
func (o *Orbit) Eccentricity() float64 {
	if o.samples == 0 || o.maxR+o.minR == 0 {
		return 0
	}
	return (o.maxR - o.minR) / (o.maxR + o.minR)
}

func (o *Orbit) Reset() {
	o.xs = o.xs[:0]
	o.minR = math.Inf(1)
	o.maxR = 0
	o.samples = 0
}
