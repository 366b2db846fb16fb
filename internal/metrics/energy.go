package metrics

import (
	"math"

	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/sim"
)

const historyLimit = 256

// EnergyDrift tracks the largest relative change of total energy against
// the baseline.
type EnergyDrift struct {
	name     string
	gravity  physics.Gravity
	initial  float64
	current  float64
	maxDrift float64
	samples  int
	history  *Series
}

// NewEnergyDrift measures against st's energy as it is now. A nil store
// takes the baseline from the first observed tick.
func NewEnergyDrift(g physics.Gravity, st *dynamo.Store) *EnergyDrift {
	e := &EnergyDrift{
		name:    "energy_drift",
		gravity: g,
		history: NewSeries(historyLimit),
	}
	if st != nil {
		e.baseline(physics.TotalEnergy(st, g))
	}
	return e
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) baseline(energy float64) {
	e.initial = energy
	e.current = energy
	e.samples = 1
	e.history.Push(energy)
}

func (e *EnergyDrift) OnTick(info sim.TickInfo) {
	energy := physics.TotalEnergy(info.Store, e.gravity)
	if e.samples == 0 {
		e.baseline(energy)
		return
	}

	e.current = energy
	e.samples++
	e.history.Push(energy)

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64     { return e.maxDrift }
func (e *EnergyDrift) Initial() float64   { return e.initial }
func (e *EnergyDrift) Current() float64   { return e.current }
func (e *EnergyDrift) History() []float64 { return e.history.Values() }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.current = 0
	e.maxDrift = 0
	e.samples = 0
	e.history.Reset()
}
