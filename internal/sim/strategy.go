package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/nbodysim/internal/compute"
	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/integrators"
	"github.com/san-kum/nbodysim/internal/physics"
	"go.uber.org/zap"
)

// Strategy advances every orbiter of a store by one tick.
type Strategy interface {
	Name() string
	Step(ctx context.Context, st *dynamo.Store) error
	SetPassHook(h dynamo.PassHook)
}

const (
	StrategySequential = "sequential"
	StrategyParallel   = "parallel"
	StrategyAuto       = "auto"
)

const (
	FallbackNone       = "none"
	FallbackSequential = "sequential"
)

// DefaultAutoThreshold is the orbiter count at which auto picks the
// parallel pipeline.
const DefaultAutoThreshold = 1000

type StrategyConfig struct {
	Kind      string
	Threshold int
	Backend   string
	Workers   int
	Fallback  string
	Force     physics.ForceModel
	Dt        float32
}

// Resolve returns the concrete strategy kind for a population.
func (c StrategyConfig) Resolve(orbiters int) (string, error) {
	switch c.Kind {
	case StrategySequential, StrategyParallel:
		return c.Kind, nil
	case StrategyAuto, "":
		threshold := c.Threshold
		if threshold <= 0 {
			threshold = DefaultAutoThreshold
		}
		if orbiters >= threshold {
			return StrategyParallel, nil
		}
		return StrategySequential, nil
	default:
		return "", fmt.Errorf("%w: unknown strategy %q", dynamo.ErrInvalidConfig, c.Kind)
	}
}

// NewStrategy builds the strategy for a population of orbiters. A parallel
// backend that cannot start is an error unless the fallback is
// FallbackSequential, in which case the sequential integrator is returned
// and the degraded mode is logged.
func NewStrategy(c StrategyConfig, orbiters int, log *zap.Logger) (Strategy, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if c.Force == nil {
		return nil, fmt.Errorf("%w: no force model", dynamo.ErrInvalidConfig)
	}
	if c.Dt <= 0 {
		return nil, fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidConfig, c.Dt)
	}
	switch c.Fallback {
	case "", FallbackNone, FallbackSequential:
	default:
		return nil, fmt.Errorf("%w: unknown fallback %q", dynamo.ErrInvalidConfig, c.Fallback)
	}

	kind, err := c.Resolve(orbiters)
	if err != nil {
		return nil, err
	}

	if kind == StrategySequential {
		log.Info("strategy selected",
			zap.String("strategy", kind),
			zap.String("force", c.Force.Name()),
			zap.Int("orbiters", orbiters))
		return integrators.NewSequential(c.Force, c.Dt), nil
	}

	p, err := openPipeline(c, log)
	if err != nil {
		if c.Fallback != FallbackSequential || !degradable(err) {
			return nil, err
		}
		log.Warn("parallel backend unavailable, running sequential",
			zap.String("backend", c.Backend),
			zap.Error(err))
		return integrators.NewSequential(c.Force, c.Dt), nil
	}

	log.Info("strategy selected",
		zap.String("strategy", p.Name()),
		zap.String("force", c.Force.Name()),
		zap.Int("orbiters", orbiters))
	return p, nil
}

func openPipeline(c StrategyConfig, log *zap.Logger) (*compute.Pipeline, error) {
	name := c.Backend
	if name == "" {
		name = compute.BackendCPU
	}

	b, err := compute.Open(name, c.Workers, log)
	if err != nil {
		return nil, err
	}

	p, err := compute.NewPipeline(b, c.Force, c.Dt, log)
	if err != nil {
		b.Close()
		return nil, err
	}
	return p, nil
}

func degradable(err error) bool {
	return errors.Is(err, dynamo.ErrBackendUnavailable) || errors.Is(err, dynamo.ErrUnsupportedForce)
}
