package dynamo

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Store holds per-body state in flat columns. Index 0 is the anchor.
type Store struct {
	pos  []mgl32.Vec3
	vel  []mgl32.Vec3
	acc  []mgl32.Vec3
	mass []float32
}

// NewStore allocates zeroed state for n bodies.
func NewStore(n int) *Store {
	if n < 0 {
		n = 0
	}
	return &Store{
		pos:  make([]mgl32.Vec3, n),
		vel:  make([]mgl32.Vec3, n),
		acc:  make([]mgl32.Vec3, n),
		mass: make([]float32, n),
	}
}

func (s *Store) Len() int { return len(s.mass) }

func (s *Store) check(i int) error {
	if i < 0 || i >= len(s.mass) {
		return indexError(i, len(s.mass))
	}
	return nil
}

func (s *Store) Position(i int) (mgl32.Vec3, error) {
	if err := s.check(i); err != nil {
		return mgl32.Vec3{}, err
	}
	return s.pos[i], nil
}

func (s *Store) Velocity(i int) (mgl32.Vec3, error) {
	if err := s.check(i); err != nil {
		return mgl32.Vec3{}, err
	}
	return s.vel[i], nil
}

func (s *Store) Acceleration(i int) (mgl32.Vec3, error) {
	if err := s.check(i); err != nil {
		return mgl32.Vec3{}, err
	}
	return s.acc[i], nil
}

func (s *Store) Mass(i int) (float32, error) {
	if err := s.check(i); err != nil {
		return 0, err
	}
	return s.mass[i], nil
}

func (s *Store) SetPosition(i int, v mgl32.Vec3) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.pos[i] = v
	return nil
}

func (s *Store) SetVelocity(i int, v mgl32.Vec3) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.vel[i] = v
	return nil
}

func (s *Store) SetAcceleration(i int, v mgl32.Vec3) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.acc[i] = v
	return nil
}

func (s *Store) SetMass(i int, m float32) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.mass[i] = m
	return nil
}

// Raw columns for integration strategies. Callers must not resize them.
func (s *Store) Positions() []mgl32.Vec3     { return s.pos }
func (s *Store) Velocities() []mgl32.Vec3    { return s.vel }
func (s *Store) Accelerations() []mgl32.Vec3 { return s.acc }
func (s *Store) Masses() []float32           { return s.mass }

// CopyFrom overwrites s with the contents of src. Both must hold the same
// population.
func (s *Store) CopyFrom(src *Store) error {
	if src.Len() != s.Len() {
		return ErrPopulationMismatch
	}
	copy(s.pos, src.pos)
	copy(s.vel, src.vel)
	copy(s.acc, src.acc)
	copy(s.mass, src.mass)
	return nil
}

func (s *Store) Clone() *Store {
	c := NewStore(s.Len())
	_ = c.CopyFrom(s)
	return c
}

// Finite reports whether every component of every body is finite. When it
// is not, the first offending index is returned.
func (s *Store) Finite() (int, bool) {
	for i := range s.mass {
		if !finite3(s.pos[i]) || !finite3(s.vel[i]) || !finite3(s.acc[i]) || !finite(s.mass[i]) {
			return i, false
		}
	}
	return -1, true
}

func finite(f float32) bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finite3(v mgl32.Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}
