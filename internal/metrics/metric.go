package metrics

import (
	"slices"

	"github.com/san-kum/nbodysim/internal/sim"
)

// Metric is a driver observer that reduces the run to one number.
type Metric interface {
	sim.Observer
	Name() string
	Value() float64
	Reset()
}

// Attach registers every metric as an observer on d.
func Attach(d *sim.Driver, ms ...Metric) {
	for _, m := range ms {
		d.AddObserver(m)
	}
}

// Values collects the current value of each metric by name.
func Values(ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// Series is a bounded window of recent samples for plotting.
type Series struct {
	limit  int
	values []float64
}

func NewSeries(limit int) *Series {
	return &Series{limit: limit, values: make([]float64, 0, limit)}
}

func (s *Series) Push(v float64) {
	if s.limit > 0 && len(s.values) == s.limit {
		s.values = slices.Delete(s.values, 0, 1)
	}
	s.values = append(s.values, v)
}

func (s *Series) Values() []float64 { return s.values }
func (s *Series) Len() int          { return len(s.values) }
func (s *Series) Reset()            { s.values = s.values[:0] }
