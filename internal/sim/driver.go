package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/scene"
	"go.uber.org/zap"
)

type State int32

const (
	Idle State = iota
	Advancing
)

func (s State) String() string {
	if s == Advancing {
		return "advancing"
	}
	return "idle"
}

// TickInfo describes a completed tick. Store is read-only to observers.
type TickInfo struct {
	Tick     uint64
	Time     float64
	Elapsed  time.Duration
	Strategy string
	Store    *dynamo.Store
}

type Observer interface {
	OnTick(info TickInfo)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(TickInfo)

func (f ObserverFunc) OnTick(info TickInfo) { f(info) }

// Driver advances a scene one fixed step at a time. It owns the scene for
// its lifetime and closes it on Close.
type Driver struct {
	scene      *scene.Scene
	strategy   Strategy
	renderer   scene.Renderer
	dt         float32
	state      atomic.Int32
	tick       uint64
	time       float64
	checkpoint *dynamo.Store
	observers  []Observer
	log        *zap.Logger
}

func NewDriver(sc *scene.Scene, strategy Strategy, dt float32, log *zap.Logger) (*Driver, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if sc == nil || strategy == nil {
		return nil, fmt.Errorf("%w: driver needs a scene and a strategy", dynamo.ErrInvalidConfig)
	}
	if sc.Closed() {
		return nil, dynamo.ErrSceneClosed
	}
	if dt <= 0 {
		return nil, fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidConfig, dt)
	}

	return &Driver{
		scene:      sc,
		strategy:   strategy,
		dt:         dt,
		checkpoint: sc.Store().Clone(),
		log:        log,
	}, nil
}

func (d *Driver) Scene() *scene.Scene          { return d.scene }
func (d *Driver) Strategy() Strategy           { return d.strategy }
func (d *Driver) State() State                 { return State(d.state.Load()) }
func (d *Driver) Ticks() uint64                { return d.tick }
func (d *Driver) Time() float64                { return d.time }
func (d *Driver) Dt() float32                  { return d.dt }
func (d *Driver) SetRenderer(r scene.Renderer) { d.renderer = r }
func (d *Driver) AddObserver(o Observer)       { d.observers = append(d.observers, o) }

// Tick runs one full tick. On any failure the store is restored to its
// state before the tick and a *dynamo.TickError is returned.
func (d *Driver) Tick(ctx context.Context) error {
	if !d.state.CompareAndSwap(int32(Idle), int32(Advancing)) {
		return dynamo.ErrTickInProgress
	}
	defer d.state.Store(int32(Idle))

	if d.scene.Closed() {
		return dynamo.ErrSceneClosed
	}

	st := d.scene.Store()
	if err := d.checkpoint.CopyFrom(st); err != nil {
		return err
	}

	start := time.Now()
	if err := d.strategy.Step(ctx, st); err != nil {
		return d.abandon(err)
	}
	if idx, ok := st.Finite(); !ok {
		return d.abandon(fmt.Errorf("%w: body %d", dynamo.ErrNonFinite, idx))
	}
	elapsed := time.Since(start)

	if err := d.scene.SyncTransforms(); err != nil {
		return d.abandon(err)
	}

	d.tick++
	d.time += float64(d.dt)

	info := TickInfo{
		Tick:     d.tick,
		Time:     d.time,
		Elapsed:  elapsed,
		Strategy: d.strategy.Name(),
		Store:    st,
	}
	for _, o := range d.observers {
		o.OnTick(info)
	}
	return nil
}

func (d *Driver) abandon(err error) error {
	st := d.scene.Store()
	if rerr := st.CopyFrom(d.checkpoint); rerr != nil {
		err = errors.Join(err, rerr)
	}
	// nodes may hold positions from the failed tick
	_ = d.scene.SyncTransforms()

	te := &dynamo.TickError{Tick: d.tick + 1, Wrapped: err}
	var pe *dynamo.PassError
	if errors.As(err, &pe) {
		te.Pass = pe.Pass
	}

	d.log.Error("tick abandoned",
		zap.Uint64("tick", te.Tick),
		zap.Stringer("pass", te.Pass),
		zap.Error(err))
	return te
}

// Frame runs one tick and then renders it if a renderer is set.
func (d *Driver) Frame(ctx context.Context) error {
	if err := d.Tick(ctx); err != nil {
		return err
	}
	if d.renderer == nil {
		return nil
	}
	return d.scene.Render(d.renderer)
}

// Run drives frames until the count is reached or ctx is done. A
// non-positive count runs until ctx is done.
func (d *Driver) Run(ctx context.Context, frames int) error {
	d.log.Debug("run started",
		zap.String("scene", d.scene.Name),
		zap.String("strategy", d.strategy.Name()),
		zap.Int("frames", frames))

	for i := 0; frames <= 0 || i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.Frame(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close tears down the strategy's resources and the scene.
func (d *Driver) Close() error {
	var errs []error
	if c, ok := d.strategy.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	errs = append(errs, d.scene.Close())
	return errors.Join(errs...)
}
