package sim

import (
	"fmt"

	"github.com/san-kum/nbodysim/internal/config"
	"github.com/san-kum/nbodysim/internal/scene"
	"go.uber.org/zap"
)

// FromConfig validates cfg, builds its scene and strategy and returns a
// driver owning both.
func FromConfig(cfg *config.Config, log *zap.Logger) (*Driver, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sc, err := scene.Build(cfg.Scene, cfg.InitParams(), log.Named("scene"))
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}

	strategy, err := NewStrategy(StrategyConfig{
		Kind:      cfg.Strategy.Kind,
		Threshold: cfg.Strategy.Threshold,
		Backend:   cfg.Strategy.Backend,
		Workers:   cfg.Strategy.Workers,
		Fallback:  cfg.Strategy.Fallback,
		Force:     cfg.ForceModel(),
		Dt:        float32(cfg.Dt),
	}, cfg.Bodies, log.Named("strategy"))
	if err != nil {
		sc.Close()
		return nil, fmt.Errorf("select strategy: %w", err)
	}

	d, err := NewDriver(sc, strategy, float32(cfg.Dt), log.Named("driver"))
	if err != nil {
		sc.Close()
		return nil, err
	}
	return d, nil
}
