package sim

import (
	"context"
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/nbodysim/internal/compute"
	"github.com/san-kum/nbodysim/internal/config"
	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/integrators"
	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/scene"
	"go.uber.org/zap"
)

// scripted runs a real integrator and then lets the test corrupt or fail
// the tick.
type scripted struct {
	inner Strategy
	after func(st *dynamo.Store) error
}

func (s *scripted) Name() string                  { return "scripted" }
func (s *scripted) SetPassHook(h dynamo.PassHook) { s.inner.SetPassHook(h) }

func (s *scripted) Step(ctx context.Context, st *dynamo.Store) error {
	if err := s.inner.Step(ctx, st); err != nil {
		return err
	}
	if s.after != nil {
		return s.after(st)
	}
	return nil
}

type countingRenderer struct {
	frames int
	bodies int
}

func (r *countingRenderer) BeginFrame()         { r.frames++ }
func (r *countingRenderer) DrawBody(mgl32.Mat4) { r.bodies++ }
func (r *countingRenderer) EndFrame() error     { return nil }

func smallScene(orbiters int) *scene.Scene {
	cfg := config.GetPreset("nbody3")
	cfg.Bodies = orbiters
	sc, err := scene.Build("test", cfg.InitParams(), zap.NewNop())
	Expect(err).NotTo(HaveOccurred())
	return sc
}

func gravity() physics.Gravity {
	return physics.NewGravity(physics.GravitationalConstant, physics.DefaultEpsilon)
}

var _ = Describe("Driver", func() {
	var (
		ctx      context.Context
		sc       *scene.Scene
		strategy *scripted
		driver   *Driver
	)

	BeforeEach(func() {
		ctx = context.Background()
		sc = smallScene(8)
		strategy = &scripted{inner: integrators.NewSequential(gravity(), 10)}

		var err error
		driver, err = NewDriver(sc, strategy, 10, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(driver.Close()).To(Succeed())
	})

	It("starts idle at time zero", func() {
		Expect(driver.State()).To(Equal(Idle))
		Expect(driver.Ticks()).To(BeZero())
		Expect(driver.Time()).To(BeZero())
	})

	It("advances time by dt per tick and syncs nodes", func() {
		Expect(driver.Tick(ctx)).To(Succeed())
		Expect(driver.Tick(ctx)).To(Succeed())

		Expect(driver.Ticks()).To(Equal(uint64(2)))
		Expect(driver.Time()).To(BeNumerically("~", 20, 1e-9))
		Expect(driver.State()).To(Equal(Idle))

		for i := 0; i < sc.Len(); i++ {
			node, err := sc.Body(i)
			Expect(err).NotTo(HaveOccurred())
			pos, _ := sc.Store().Position(i)
			Expect(node.Position()).To(Equal(pos))
		}
	})

	It("notifies observers after each tick", func() {
		var seen []TickInfo
		driver.AddObserver(ObserverFunc(func(info TickInfo) { seen = append(seen, info) }))

		Expect(driver.Tick(ctx)).To(Succeed())

		Expect(seen).To(HaveLen(1))
		Expect(seen[0].Tick).To(Equal(uint64(1)))
		Expect(seen[0].Strategy).To(Equal("scripted"))
		Expect(seen[0].Store).To(BeIdenticalTo(sc.Store()))
	})

	It("rejects a tick started while another is advancing", func() {
		var nested error
		strategy.SetPassHook(func(p dynamo.Pass, _ *dynamo.Store) {
			if p == dynamo.PassVelocity {
				Expect(driver.State()).To(Equal(Advancing))
				nested = driver.Tick(ctx)
			}
		})

		Expect(driver.Tick(ctx)).To(Succeed())
		Expect(nested).To(MatchError(dynamo.ErrTickInProgress))
		Expect(driver.Ticks()).To(Equal(uint64(1)))
	})

	It("restores the store when the strategy fails", func() {
		before := sc.Store().Clone()
		strategy.after = func(*dynamo.Store) error {
			return &dynamo.PassError{Pass: dynamo.PassPosition, Wrapped: errors.New("device lost")}
		}

		err := driver.Tick(ctx)

		var te *dynamo.TickError
		Expect(errors.As(err, &te)).To(BeTrue())
		Expect(te.Tick).To(Equal(uint64(1)))
		Expect(te.Pass).To(Equal(dynamo.PassPosition))
		Expect(sc.Store().Positions()).To(Equal(before.Positions()))
		Expect(sc.Store().Velocities()).To(Equal(before.Velocities()))
		Expect(driver.Ticks()).To(BeZero())
		Expect(driver.State()).To(Equal(Idle))

		node, _ := sc.Body(3)
		pos, _ := before.Position(3)
		Expect(node.Position()).To(Equal(pos))
	})

	It("rejects non-finite results", func() {
		before := sc.Store().Clone()
		strategy.after = func(st *dynamo.Store) error {
			return st.SetPosition(5, mgl32.Vec3{float32(math.NaN()), 0, 0})
		}

		err := driver.Tick(ctx)

		Expect(err).To(MatchError(dynamo.ErrNonFinite))
		Expect(sc.Store().Positions()).To(Equal(before.Positions()))
	})

	It("abandons a canceled tick", func() {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		err := driver.Tick(canceled)

		Expect(err).To(MatchError(context.Canceled))
		var te *dynamo.TickError
		Expect(errors.As(err, &te)).To(BeTrue())
		Expect(te.Pass).To(Equal(dynamo.PassAcceleration))
	})

	It("renders once per frame", func() {
		r := &countingRenderer{}
		driver.SetRenderer(r)

		Expect(driver.Run(ctx, 3)).To(Succeed())

		Expect(driver.Ticks()).To(Equal(uint64(3)))
		Expect(r.frames).To(Equal(3))
		Expect(r.bodies).To(Equal(3 * 9))
	})

	It("refuses to tick a closed scene", func() {
		Expect(sc.Close()).To(Succeed())
		Expect(driver.Tick(ctx)).To(MatchError(dynamo.ErrSceneClosed))
	})

	It("keeps the anchor fixed", func() {
		Expect(driver.Run(ctx, 20)).To(Succeed())

		pos, _ := sc.Store().Position(0)
		vel, _ := sc.Store().Velocity(0)
		acc, _ := sc.Store().Acceleration(0)
		Expect(pos).To(Equal(mgl32.Vec3{}))
		Expect(vel).To(Equal(mgl32.Vec3{}))
		Expect(acc).To(Equal(mgl32.Vec3{}))
	})
})

var _ = Describe("NewDriver", func() {
	It("requires a scene and a strategy", func() {
		_, err := NewDriver(nil, integrators.NewSequential(gravity(), 1), 1, nil)
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
	})

	It("requires a positive dt", func() {
		sc := smallScene(2)
		defer sc.Close()
		_, err := NewDriver(sc, integrators.NewSequential(gravity(), 1), 0, nil)
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
	})
})

var _ = Describe("Strategies through the driver", func() {
	It("produce the same positions sequentially and in parallel", func() {
		ctx := context.Background()

		seqScene := smallScene(300)
		parScene := smallScene(300)

		seqDriver, err := NewDriver(seqScene, integrators.NewSequential(gravity(), 10), 10, nil)
		Expect(err).NotTo(HaveOccurred())
		defer seqDriver.Close()

		pipe, err := compute.NewPipeline(compute.NewCPUBackend(4), gravity(), 10, nil)
		Expect(err).NotTo(HaveOccurred())
		parDriver, err := NewDriver(parScene, pipe, 10, nil)
		Expect(err).NotTo(HaveOccurred())
		defer parDriver.Close()

		Expect(seqDriver.Run(ctx, 15)).To(Succeed())
		Expect(parDriver.Run(ctx, 15)).To(Succeed())

		sp, pp := seqScene.Store().Positions(), parScene.Store().Positions()
		for i := range sp {
			scale := math.Max(float64(sp[i].Len()), 1)
			Expect(float64(sp[i].Sub(pp[i]).Len()) / scale).To(BeNumerically("<", 1e-3), "body %d", i)
		}
	})
})

var _ = Describe("FromConfig", func() {
	It("builds a runnable nbody2 scene", func() {
		d, err := FromConfig(config.GetPreset("nbody2"), zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		defer d.Close()

		Expect(d.Strategy().Name()).To(Equal("sequential"))
		Expect(d.Scene().Store().Len()).To(Equal(11))
		Expect(d.Dt()).To(Equal(float32(100)))
		Expect(d.Run(context.Background(), 5)).To(Succeed())
	})

	It("rejects an invalid configuration", func() {
		cfg := config.DefaultConfig()
		cfg.Bodies = 0
		_, err := FromConfig(cfg, nil)
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
	})
})
