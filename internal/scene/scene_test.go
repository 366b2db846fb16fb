package scene

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/gomega"
	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/physics"
	"go.uber.org/zap/zaptest"
)

func testParams(n int, policy RadiusPolicy) InitParams {
	return InitParams{
		Orbiters:     n,
		G:            physics.GravitationalConstant,
		AnchorMass:   physics.SunMass,
		BodyMass:     physics.DefaultBodyMass,
		MinDistance:  20,
		MaxDistance:  54,
		Policy:       policy,
		SpreadFactor: DefaultSpreadFactor,
		BandOffset:   DefaultBandOffset,
		MinRadius:    DefaultMinRadius,
		AnchorScale:  DefaultAnchorScale,
		OrbiterScale: DefaultOrbiterScale,
		Seed:         42,
	}
}

func TestOrbitApproximation(t *testing.T) {
	const distance = 40

	p := testParams(1, RadiusFixed)
	p.MinDistance = distance
	in, err := NewInitializer(p)
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewPCG(1, 2))
	want := math.Sqrt(float64(p.G) * float64(p.AnchorMass) / distance)

	for i := 0; i < 100; i++ {
		angle := 2 * math.Pi * rng.Float32()
		pos, vel := in.Place(angle, 0, in.Radius())

		if pos[2] != 0 {
			t.Fatalf("zero z angle produced z=%f", pos[2])
		}
		speed := float64(vel.Len())
		if rel := math.Abs(speed-want) / want; rel > 1e-5 {
			t.Fatalf("angle %f: speed %g, want %g (rel %g)", angle, speed, want, rel)
		}
		cos := float64(pos.Dot(vel)) / (float64(pos.Len()) * speed)
		if math.Abs(cos) > 1e-5 {
			t.Fatalf("angle %f: velocity not tangential, cos=%g", angle, cos)
		}
		if vel[2] != 0 {
			t.Fatalf("expected planar velocity, got %v", vel)
		}
	}
}

func TestVelocityKeepsRadialZ(t *testing.T) {
	in, _ := NewInitializer(testParams(1, RadiusFixed))
	pos, vel := in.Place(0, math.Pi/4, 30)

	u := pos.Normalize()
	speed := float32(math.Sqrt(float64(physics.GravitationalConstant) * float64(physics.SunMass) / float64(pos.Len())))
	if math.Abs(float64(vel[2]-u[2]*speed)) > 1e-6 {
		t.Errorf("expected vz %f, got %f", u[2]*speed, vel[2])
	}
}

func TestRadiusPolicies(t *testing.T) {
	tests := []struct {
		policy   RadiusPolicy
		min, max float32
	}{
		{RadiusSpread, 0, 34 * DefaultSpreadFactor},
		{RadiusBanded, DefaultBandOffset, 34 + DefaultBandOffset},
		{RadiusFixed, 20, 20},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			in, err := NewInitializer(testParams(1, tt.policy))
			if err != nil {
				t.Fatal(err)
			}
			for i := 0; i < 2000; i++ {
				r := in.Radius()
				if r < tt.min || r > tt.max {
					t.Fatalf("radius %f outside [%f, %f]", r, tt.min, tt.max)
				}
			}
		})
	}
}

func TestZeroRadiusFloor(t *testing.T) {
	g := NewWithT(t)

	in, _ := NewInitializer(testParams(1, RadiusSpread))
	pos, vel := in.Place(0, 0, 0)

	g.Expect(pos).To(Equal(mgl32.Vec3{DefaultMinRadius, 0, 0}))
	for _, c := range vel {
		g.Expect(math.IsNaN(float64(c)) || math.IsInf(float64(c), 0)).To(BeFalse())
	}
	g.Expect(vel.Len()).To(BeNumerically(">", 0))
}

func TestInitParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*InitParams)
	}{
		{"no orbiters", func(p *InitParams) { p.Orbiters = 0 }},
		{"inverted band", func(p *InitParams) { p.MaxDistance = 10 }},
		{"zero floor", func(p *InitParams) { p.MinRadius = 0 }},
		{"negative mass", func(p *InitParams) { p.AnchorMass = -1 }},
		{"unknown policy", func(p *InitParams) { p.Policy = "ring" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams(4, RadiusBanded)
			tt.mutate(&p)
			if _, err := Build("bad", p, nil); !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestBuildLockstep(t *testing.T) {
	g := NewWithT(t)

	s, err := Build("test", testParams(50, RadiusBanded), zaptest.NewLogger(t))
	g.Expect(err).NotTo(HaveOccurred())
	defer s.Close()

	st := s.Store()
	g.Expect(st.Len()).To(Equal(51))
	g.Expect(s.Len()).To(Equal(51))
	g.Expect(s.System().Children()).To(HaveLen(51))

	for i := 0; i < st.Len(); i++ {
		node, err := s.Body(i)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(node.Index).To(Equal(i))

		pos, _ := st.Position(i)
		g.Expect(node.Position()).To(Equal(pos))
	}

	anchor, _ := s.Body(0)
	g.Expect(anchor.Scale()).To(Equal(float32(DefaultAnchorScale)))
	m, _ := st.Mass(0)
	g.Expect(m).To(Equal(physics.SunMass))

	_, err = s.Body(51)
	g.Expect(errors.Is(err, dynamo.ErrIndexOutOfRange)).To(BeTrue())
}

func TestBuildDeterministic(t *testing.T) {
	a, err := Build("a", testParams(20, RadiusSpread), nil)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Build("b", testParams(20, RadiusSpread), nil)

	pa, pb := a.Store().Positions(), b.Store().Positions()
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("body %d differs between builds with the same seed", i)
		}
	}
}

func TestPopulateMismatch(t *testing.T) {
	in, _ := NewInitializer(testParams(3, RadiusFixed))
	_, err := in.Populate(dynamo.NewStore(2), NewGroup("g"))
	if !errors.Is(err, dynamo.ErrPopulationMismatch) {
		t.Errorf("expected ErrPopulationMismatch, got %v", err)
	}
}

func TestComposeTransform(t *testing.T) {
	parent := mgl32.Translate3D(1, 2, 3)
	local := Transform{
		Position: mgl32.Vec3{1, 0, 0},
		Rotation: mgl32.Vec3{0, 0, mgl32.DegToRad(90)},
		Scale:    mgl32.Vec3{2, 2, 2},
	}

	world := ComposeTransform(parent, local)

	origin := world.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	if !origin.ApproxEqual(mgl32.Vec3{2, 2, 3}) {
		t.Errorf("expected origin at (2,2,3), got %v", origin)
	}

	// +x in local space: rotated onto +y and doubled.
	tip := world.Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	if !tip.ApproxEqualThreshold(mgl32.Vec3{2, 4, 3}, 1e-5) {
		t.Errorf("expected tip at (2,4,3), got %v", tip)
	}

	again := ComposeTransform(parent, local)
	if world != again {
		t.Error("compose is not deterministic")
	}
}

type recorder struct {
	groups []string
	worlds map[int]mgl32.Mat4
	begun  int
	ended  int
	drawn  []mgl32.Mat4
}

func (r *recorder) VisitGroup(g *Group, _ mgl32.Mat4) { r.groups = append(r.groups, g.Name) }
func (r *recorder) VisitBody(b *BodyNode, w mgl32.Mat4) {
	if r.worlds == nil {
		r.worlds = map[int]mgl32.Mat4{}
	}
	r.worlds[b.Index] = w
}
func (r *recorder) BeginFrame()               { r.begun++ }
func (r *recorder) DrawBody(world mgl32.Mat4) { r.drawn = append(r.drawn, world) }
func (r *recorder) EndFrame() error           { r.ended++; return nil }

func TestWalkComposesTopDown(t *testing.T) {
	root := NewGroup("root")
	root.SetPosition(mgl32.Vec3{10, 0, 0})
	inner := NewGroup("inner")
	inner.SetPosition(mgl32.Vec3{0, 5, 0})
	body := NewBodyNode(7, 1)
	body.SetPosition(mgl32.Vec3{0, 0, 1})
	root.Add(inner)
	inner.Add(body)

	rec := &recorder{}
	Walk(root, mgl32.Ident4(), rec)

	if len(rec.groups) != 2 || rec.groups[0] != "root" || rec.groups[1] != "inner" {
		t.Fatalf("unexpected group order %v", rec.groups)
	}
	got := rec.worlds[7].Col(3).Vec3()
	if got != (mgl32.Vec3{10, 5, 1}) {
		t.Errorf("expected body world translation (10,5,1), got %v", got)
	}
	if body.Local().Position != (mgl32.Vec3{0, 0, 1}) {
		t.Error("walk mutated the local transform")
	}
}

func TestSceneSyncAndRender(t *testing.T) {
	g := NewWithT(t)

	s, err := Build("render", testParams(5, RadiusBanded), nil)
	g.Expect(err).NotTo(HaveOccurred())

	moved := mgl32.Vec3{1, 2, 3}
	g.Expect(s.Store().SetPosition(3, moved)).To(Succeed())
	g.Expect(s.SyncTransforms()).To(Succeed())

	node, _ := s.Body(3)
	g.Expect(node.Position()).To(Equal(moved))

	rec := &recorder{}
	g.Expect(s.Render(rec)).To(Succeed())
	g.Expect(rec.begun).To(Equal(1))
	g.Expect(rec.ended).To(Equal(1))
	g.Expect(rec.drawn).To(HaveLen(6))
	g.Expect(rec.drawn[3].Col(3).Vec3()).To(Equal(moved))
}

func TestSceneClosed(t *testing.T) {
	s, err := Build("closing", testParams(2, RadiusFixed), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}

	if !errors.Is(s.SyncTransforms(), dynamo.ErrSceneClosed) {
		t.Error("sync after close should fail")
	}
	if !errors.Is(s.Render(&recorder{}), dynamo.ErrSceneClosed) {
		t.Error("render after close should fail")
	}
	if _, err := s.Body(0); !errors.Is(err, dynamo.ErrSceneClosed) {
		t.Error("body lookup after close should fail")
	}
}
