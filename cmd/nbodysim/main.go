package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/nbodysim/internal/analysis"
	"github.com/san-kum/nbodysim/internal/compute"
	"github.com/san-kum/nbodysim/internal/config"
	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/export"
	"github.com/san-kum/nbodysim/internal/gui"
	"github.com/san-kum/nbodysim/internal/metrics"
	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/sim"
	"github.com/san-kum/nbodysim/internal/storage"
	"github.com/san-kum/nbodysim/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configFile string
	bodies     int
	dt         float64
	frames     int
	seed       uint64
	strategy   string
	backend    string
	workers    int
	fallback   string
	logLevel   string
	logFormat  string
	runsDir    string
	// Output
	plotEnergy bool
	noSave     bool
	svgPath    string
	frameSVG   string
	jsonPath   string
	trailCount int
	trailsSVG  string
	// Live view
	frameRate int
	// Bench
	benchSizes []int
	benchTicks int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "nbodysim",
		Short:         "gravitational n-body simulator",
		Args:          cobra.MaximumNArgs(1),
		RunE:          runLive,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	pf.IntVar(&bodies, "bodies", config.DefaultBodies, "number of orbiting bodies")
	pf.Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	pf.Uint64Var(&seed, "seed", 0, "random seed for body placement")
	pf.StringVar(&strategy, "strategy", sim.StrategyAuto, "integration strategy (sequential, parallel, auto)")
	pf.StringVar(&backend, "backend", compute.BackendCPU, "parallel backend ("+strings.Join(compute.Backends(), ", ")+")")
	pf.IntVar(&workers, "workers", 0, "parallel workers (0 = one per CPU)")
	pf.StringVar(&fallback, "fallback", sim.FallbackNone, "fallback when the parallel backend is unavailable (none, sequential)")
	pf.StringVar(&logLevel, "log-level", "info", "log level")
	pf.StringVar(&logFormat, "log-format", "console", "log format (console, json)")
	pf.StringVar(&runsDir, "runs", config.DefaultRunsDir, "run records directory")
	rootCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene headless and record the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to run (0 = until interrupted)")
	runCmd.Flags().BoolVar(&plotEnergy, "plot", false, "plot total energy")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the run")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "write a top-down SVG of the final positions")
	runCmd.Flags().StringVar(&frameSVG, "frame-svg", "", "write the final terminal frame as SVG")
	runCmd.Flags().StringVar(&jsonPath, "json", "", "write the final state as JSON (- for stdout)")
	runCmd.Flags().IntVar(&trailCount, "trails", 5, "orbiters to trace for --trails-svg")
	runCmd.Flags().StringVar(&trailsSVG, "trails-svg", "", "write orbit trails as SVG")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a scene with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")

	windowCmd := &cobra.Command{
		Use:   "window [scene]",
		Short: "run a scene in a 3D window (needs -tags opengl)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runWindow,
	}

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "list scene presets",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SCENE\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				fmt.Fprintf(w, "%s\t%s\n", name, config.Presets[name].Description)
			}
			w.Flush()
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "compare strategies across population sizes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}
	benchCmd.Flags().IntSliceVar(&benchSizes, "sizes", []int{100, 500, 1000, 2000}, "orbiter counts")
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 20, "ticks per measurement")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a recorded run as JSON or SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&jsonPath, "json", "-", "JSON output path (- for stdout)")
	exportCmd.Flags().StringVar(&svgPath, "svg", "", "SVG output path")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage configuration files",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a configuration file with default values",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(runCmd, liveCmd, windowCmd, scenesCmd, benchCmd, listCmd, exportCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig layers the config file, the scene preset named by args and
// any flags set on the command line, in that order.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
	}

	if len(args) > 0 {
		if !cfg.Apply(args[0]) {
			return nil, fmt.Errorf("unknown scene %q (available: %s)", args[0], strings.Join(config.ListPresets(), ", "))
		}
	} else if configFile == "" {
		cfg.Apply(config.DefaultScene)
	}

	flags := cmd.Flags()
	if flags.Changed("bodies") {
		cfg.Bodies = bodies
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("strategy") {
		cfg.Strategy.Kind = strategy
	}
	if flags.Changed("backend") {
		cfg.Strategy.Backend = backend
	}
	if flags.Changed("workers") {
		cfg.Strategy.Workers = workers
	}
	if flags.Changed("fallback") {
		cfg.Strategy.Fallback = fallback
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = logFormat
	}
	if flags.Changed("runs") {
		cfg.RunsDir = runsDir
	}
	if flags.Changed("fps") {
		cfg.Render.FPS = frameRate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	return zapCfg.Build()
}

func energyModel(cfg *config.Config) physics.Gravity {
	return physics.NewGravity(float32(cfg.Gravity), float32(cfg.Epsilon))
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	d, err := sim.FromConfig(cfg, log)
	if err != nil {
		return err
	}
	defer d.Close()

	energy := metrics.NewEnergyDrift(energyModel(cfg), d.Scene().Store())
	bound := metrics.NewStability(float32(cfg.Distance.Max) * 10)
	timing := metrics.NewTickTiming()
	orbit := analysis.NewOrbit(1, cfg.Dt)
	ms := []metrics.Metric{energy, bound, timing, orbit}
	metrics.Attach(d, ms...)

	var trails *export.Trails
	if trailsSVG != "" {
		n := min(trailCount, cfg.Bodies)
		idx := make([]int, n)
		for i := range idx {
			idx[i] = 1 + i*cfg.Bodies/max(n, 1)
		}
		trails = export.NewTrails(0, idx...)
		d.AddObserver(trails)
	}

	renderer := viz.NewTermRenderer(cfg.Render.Width, cfg.Render.Height, nil)
	d.SetRenderer(renderer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info("run started",
		zap.String("scene", cfg.Scene),
		zap.Int("bodies", cfg.Bodies),
		zap.String("strategy", d.Strategy().Name()),
		zap.Int("frames", cfg.Frames))

	start := time.Now()
	runErr := d.Run(ctx, cfg.Frames)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	log.Info("run finished",
		zap.Uint64("ticks", d.Ticks()),
		zap.Duration("elapsed", time.Since(start)))

	fmt.Println(renderer.Frame())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ticks\t%d\n", d.Ticks())
	fmt.Fprintf(w, "sim time\t%.0f\n", d.Time())
	fmt.Fprintf(w, "strategy\t%s\n", d.Strategy().Name())
	fmt.Fprintf(w, "energy drift\t%.3e\n", energy.Value())
	fmt.Fprintf(w, "bound fraction\t%.3f\n", bound.Value())
	fmt.Fprintf(w, "tick time\t%.2f ms\n", timing.Value())
	if period := orbit.Value(); period > 0 {
		fmt.Fprintf(w, "body 1 period\t%.0f (e=%.3f)\n", period, orbit.Eccentricity())
	}
	w.Flush()

	if plotEnergy {
		if chart := viz.EnergyPlot(energy.History(), 60, 10); chart != "" {
			fmt.Println()
			fmt.Println(chart)
		}
	}

	meta := storage.RunMetadata{
		Scene:    cfg.Scene,
		Seed:     cfg.Seed,
		Bodies:   cfg.Bodies,
		Dt:       cfg.Dt,
		Ticks:    d.Ticks(),
		SimTime:  d.Time(),
		Strategy: d.Strategy().Name(),
		Force:    cfg.Force,
		Metrics:  metrics.Values(ms...),
	}
	if !noSave {
		st := storage.New(cfg.RunsDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(meta, d.Scene().Store())
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		meta.ID = id
		log.Info("run saved", zap.String("id", id), zap.String("dir", cfg.RunsDir))
	}

	store := d.Scene().Store()
	if svgPath != "" {
		if err := export.WriteSVG(svgPath, export.PositionsToSVG(store.Positions(), 800, 800)); err != nil {
			return err
		}
	}
	if frameSVG != "" {
		if err := export.WriteSVG(frameSVG, export.CanvasToSVG(renderer.Canvas(), 4)); err != nil {
			return err
		}
	}
	if trails != nil {
		if err := export.WriteSVG(trailsSVG, export.TrailsToSVG(trails, 800, 800)); err != nil {
			return err
		}
	}
	if jsonPath != "" {
		if err := export.ExportJSON(jsonPath, export.NewSnapshot(meta, store)); err != nil {
			return err
		}
	}
	return runErr
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	log := zap.NewNop()
	if cfg.Logging.File != "" {
		if log, err = newLogger(cfg.Logging); err != nil {
			return err
		}
	}
	defer log.Sync()

	d, err := sim.FromConfig(cfg, log)
	if err != nil {
		return err
	}
	defer d.Close()

	energy := metrics.NewEnergyDrift(energyModel(cfg), d.Scene().Store())
	timing := metrics.NewTickTiming()
	metrics.Attach(d, energy, timing)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	renderer := viz.NewTermRenderer(cfg.Render.Width, cfg.Render.Height, nil)
	m := viz.NewLiveModel(ctx, d, renderer, energy, timing, cfg.Render.FPS)

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if lm, ok := final.(viz.LiveModel); ok && lm.Err() != nil {
		return lm.Err()
	}
	return nil
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	// The window owns the only GL context on this thread.
	if cfg.Strategy.Backend == compute.BackendOpenGL {
		log.Warn("window mode uses the cpu backend")
		cfg.Strategy.Backend = compute.BackendCPU
	}

	win, err := gui.Open(1280, 720, "nbodysim: "+cfg.Scene, log.Named("gui"))
	if err != nil {
		return err
	}
	defer win.Close()

	d, err := sim.FromConfig(cfg, log)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return win.Run(ctx, d)
}

func benchScene(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	log, err := newLogger(base.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()
	fmt.Printf("benchmarking %s, %d ticks per run\n\n", base.Scene, benchTicks)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODIES\tSTRATEGY\tTOTAL\tPER TICK\tTICKS/SEC")

	for _, n := range benchSizes {
		for _, kind := range []string{sim.StrategySequential, sim.StrategyParallel} {
			cfg := *base
			cfg.Bodies = n
			cfg.Strategy.Kind = kind
			cfg.Strategy.Fallback = sim.FallbackNone

			d, err := sim.FromConfig(&cfg, log)
			if err != nil {
				if errors.Is(err, dynamo.ErrBackendUnavailable) {
					fmt.Fprintf(w, "%d\t%s\tunavailable\t\t\n", n, kind)
					continue
				}
				return err
			}

			start := time.Now()
			err = d.Run(ctx, benchTicks)
			elapsed := time.Since(start)
			d.Close()
			if err != nil {
				return err
			}

			perTick := elapsed / time.Duration(max(benchTicks, 1))
			fmt.Fprintf(w, "%d\t%s\t%v\t%v\t%.1f\n",
				n, d.Strategy().Name(), elapsed.Round(time.Microsecond), perTick.Round(time.Microsecond),
				float64(benchTicks)/elapsed.Seconds())
		}
	}

	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	dir := runsDir
	if configFile != "" && !cmd.Flags().Changed("runs") {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		dir = cfg.RunsDir
	}

	runs, err := storage.New(dir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tBODIES\tTICKS\tSTRATEGY\tDRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%.3e\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Bodies,
			run.Ticks,
			run.Strategy,
			run.Metrics["energy_drift"],
		)
	}
	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(runsDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	state, err := st.LoadBodies(args[0])
	if err != nil {
		return err
	}

	if svgPath != "" {
		if err := export.WriteSVG(svgPath, export.PositionsToSVG(state.Positions(), 800, 800)); err != nil {
			return err
		}
	}
	if jsonPath != "" {
		return export.ExportJSON(jsonPath, export.NewSnapshot(*meta, state))
	}
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "nbodysim.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
