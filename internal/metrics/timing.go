package metrics

import (
	"time"

	"github.com/san-kum/nbodysim/internal/sim"
)

// TickTiming reports the mean wall time of a tick in milliseconds.
type TickTiming struct {
	name    string
	sum     time.Duration
	max     time.Duration
	samples int
}

func NewTickTiming() *TickTiming {
	return &TickTiming{
		name: "tick_ms",
	}
}

func (t *TickTiming) Name() string {
	return t.name
}

func (t *TickTiming) OnTick(info sim.TickInfo) {
	t.sum += info.Elapsed
	t.max = max(t.max, info.Elapsed)
	t.samples++
}

func (t *TickTiming) Value() float64 {
	if t.samples == 0 {
		return 0
	}
	return float64(t.sum) / float64(t.samples) / float64(time.Millisecond)
}

func (t *TickTiming) Max() time.Duration { return t.max }
func (t *TickTiming) Samples() int       { return t.samples }

// Rate returns ticks per second of pure integration time.
func (t *TickTiming) Rate() float64 {
	if t.sum == 0 {
		return 0
	}
	return float64(t.samples) / t.sum.Seconds()
}

func (t *TickTiming) Reset() {
	t.sum = 0
	t.max = 0
	t.samples = 0
}
