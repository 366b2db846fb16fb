package scene

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/nbodysim/internal/dynamo"
)

// RadiusPolicy selects how an orbiter's distance from the anchor is drawn.
type RadiusPolicy string

const (
	// RadiusSpread draws (max-min) * U[0, SpreadFactor].
	RadiusSpread RadiusPolicy = "spread"
	// RadiusBanded draws (max-min) * U[0, 1] + BandOffset.
	RadiusBanded RadiusPolicy = "banded"
	// RadiusFixed places every orbiter at MinDistance.
	RadiusFixed RadiusPolicy = "fixed"
)

const (
	DefaultSpreadFactor = 5
	DefaultBandOffset   = 30
	DefaultMinRadius    = 1
	DefaultAnchorScale  = 5
	DefaultOrbiterScale = 1
)

func RadiusPolicies() []RadiusPolicy {
	return []RadiusPolicy{RadiusSpread, RadiusBanded, RadiusFixed}
}

type InitParams struct {
	Orbiters     int
	G            float32
	AnchorMass   float32
	BodyMass     float32
	MinDistance  float32
	MaxDistance  float32
	Policy       RadiusPolicy
	SpreadFactor float32
	BandOffset   float32
	// MinRadius is the floor applied to sampled radii so the radial unit
	// vector is always defined.
	MinRadius    float32
	AnchorScale  float32
	OrbiterScale float32
	Seed         uint64
}

func (p InitParams) Validate() error {
	switch {
	case p.Orbiters < 1:
		return fmt.Errorf("%w: need at least one orbiter, got %d", dynamo.ErrInvalidConfig, p.Orbiters)
	case p.MinDistance < 0 || p.MaxDistance < p.MinDistance:
		return fmt.Errorf("%w: distance band [%g, %g]", dynamo.ErrInvalidConfig, p.MinDistance, p.MaxDistance)
	case p.MinRadius <= 0:
		return fmt.Errorf("%w: min radius must be positive, got %g", dynamo.ErrInvalidConfig, p.MinRadius)
	case p.G < 0 || p.AnchorMass < 0 || p.BodyMass < 0:
		return fmt.Errorf("%w: negative gravity or mass", dynamo.ErrInvalidConfig)
	}
	switch p.Policy {
	case RadiusSpread, RadiusBanded, RadiusFixed:
		return nil
	default:
		return fmt.Errorf("%w: unknown radius policy %q", dynamo.ErrInvalidConfig, p.Policy)
	}
}

// Initializer places orbiters around the anchor on approximately circular
// orbits. The same seed always yields the same system.
type Initializer struct {
	params InitParams
	rng    *rand.Rand
}

func NewInitializer(p InitParams) (*Initializer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Initializer{
		params: p,
		rng:    rand.New(rand.NewPCG(p.Seed, p.Seed^0x5851f42d4c957f2d)),
	}, nil
}

func (in *Initializer) Params() InitParams { return in.params }

// Radius draws the next orbit radius according to the configured policy.
func (in *Initializer) Radius() float32 {
	band := in.params.MaxDistance - in.params.MinDistance
	switch in.params.Policy {
	case RadiusSpread:
		return band * in.params.SpreadFactor * in.rng.Float32()
	case RadiusBanded:
		return band*in.rng.Float32() + in.params.BandOffset
	default:
		return in.params.MinDistance
	}
}

// Place returns the position and initial velocity of an orbiter at the
// given azimuth, secondary angle and radius. The speed is the circular
// orbit speed sqrt(G*M/d); the velocity is the radial direction rotated 90
// degrees about z, with the radial z component carried over unchanged.
func (in *Initializer) Place(angle, zAngle, radius float32) (pos, vel mgl32.Vec3) {
	if radius < in.params.MinRadius {
		radius = in.params.MinRadius
	}

	pos = mgl32.Vec3{
		radius * float32(math.Cos(float64(angle))),
		radius * float32(math.Sin(float64(angle))),
		radius * float32(math.Sin(float64(zAngle))),
	}

	d := pos.Len()
	if d < in.params.MinRadius {
		d = in.params.MinRadius
	}
	a := pos.Mul(1 / d)
	speed := float32(math.Sqrt(float64(in.params.G) * float64(in.params.AnchorMass) / float64(d)))

	vel = mgl32.Vec3{-a[1] * speed, a[0] * speed, a[2] * speed}
	return pos, vel
}

// Populate writes the anchor and every orbiter into st and attaches a body
// node for each under parent, so that store index i always maps to the i-th
// returned node.
func (in *Initializer) Populate(st *dynamo.Store, parent *Group) ([]*BodyNode, error) {
	n := in.params.Orbiters + 1
	if st.Len() != n {
		return nil, fmt.Errorf("%w: store holds %d bodies, want %d", dynamo.ErrPopulationMismatch, st.Len(), n)
	}

	nodes := make([]*BodyNode, 0, n)
	add := func(i int, pos, vel mgl32.Vec3, mass, scale float32) error {
		if err := st.SetPosition(i, pos); err != nil {
			return err
		}
		if err := st.SetVelocity(i, vel); err != nil {
			return err
		}
		if err := st.SetAcceleration(i, mgl32.Vec3{}); err != nil {
			return err
		}
		if err := st.SetMass(i, mass); err != nil {
			return err
		}
		node := NewBodyNode(i, scale)
		node.SetPosition(pos)
		parent.Add(node)
		nodes = append(nodes, node)
		return nil
	}

	if err := add(0, mgl32.Vec3{}, mgl32.Vec3{}, in.params.AnchorMass, in.params.AnchorScale); err != nil {
		return nil, err
	}

	for i := 1; i < n; i++ {
		angle := 2 * math.Pi * in.rng.Float32()
		zAngle := math.Pi * in.rng.Float32()
		pos, vel := in.Place(angle, zAngle, in.Radius())
		if err := add(i, pos, vel, in.params.BodyMass, in.params.OrbiterScale); err != nil {
			return nil, err
		}
	}

	return nodes, nil
}
