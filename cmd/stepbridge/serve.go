package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/stepbridge/internal/bridge"
	"github.com/san-kum/stepbridge/internal/config"
	"github.com/san-kum/stepbridge/internal/metrics"
	"github.com/san-kum/stepbridge/internal/sim"
	"github.com/san-kum/stepbridge/internal/storage"
	"github.com/san-kum/stepbridge/internal/viz"
)

type serveOptions struct {
	configFile string
	preset     string
	listen     string
	dt         float64
	integrator string
	tick       time.Duration
	record     bool
	monitor    bool
	shutdown   time.Duration
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "wait for one controller and step the lander for each of its commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, opts.preset)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configFile, "config", "", "config file path (yaml)")
	f.StringVar(&opts.preset, "preset", "", "lander preset (see 'stepbridge presets')")
	f.StringVar(&opts.listen, "listen", config.DefaultListen, "address to accept the controller on")
	f.Float64Var(&opts.dt, "dt", config.DefaultDt, "physics step per command, in seconds")
	f.StringVar(&opts.integrator, "integrator", config.DefaultIntegrator, "integrator (euler, midpoint, rk4)")
	f.DurationVar(&opts.tick, "tick", config.DefaultTickInterval, "host tick interval")
	f.BoolVar(&opts.record, "record", false, "record the session to the data directory")
	f.BoolVar(&opts.monitor, "monitor", false, "show a live terminal monitor")
	f.DurationVar(&opts.shutdown, "shutdown-timeout", config.DefaultShutdown, "how long to wait for the bridge to stop")
	return cmd
}

// resolve layers defaults, preset, config file and explicitly set flags,
// in that order.
func (o *serveOptions) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if o.preset != "" {
		cfg = config.GetPreset(o.preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", o.preset, config.ListPresets())
		}
	}
	if o.configFile != "" {
		loaded, err := config.Load(o.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.Listen = o.listen
	}
	if flags.Changed("dt") {
		cfg.Sim.Dt = o.dt
	}
	if flags.Changed("integrator") {
		cfg.Sim.Integrator = o.integrator
	}
	if flags.Changed("tick") {
		cfg.Sim.TickInterval = o.tick
	}
	if flags.Changed("record") {
		cfg.Record.Enabled = o.record
	}
	if flags.Changed("monitor") {
		cfg.Monitor = o.monitor
	}
	if flags.Changed("shutdown-timeout") {
		cfg.Shutdown = o.shutdown
	}
	if flags.Changed("data") || cfg.Record.DataDir == "" {
		cfg.Record.DataDir = dataDir
	}
	if !flags.Changed("log-level") && cfg.LogLevel != "" {
		if err := setLogLevel(cfg.LogLevel); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serve(parent context.Context, cfg *config.Config, preset string) error {
	if parent == nil {
		parent = context.Background()
	}
	log := logrus.WithField("component", "serve")

	lander, err := cfg.NewLander()
	if err != nil {
		return err
	}
	exec, err := sim.NewExecutor(lander, cfg.Sim.Dt, logrus.WithField("component", "executor"))
	if err != nil {
		return err
	}
	for _, m := range metrics.Standard() {
		exec.AddMetric(m)
	}

	var recorder *storage.Recorder
	if cfg.Record.Enabled {
		recorder = storage.NewRecorder()
		exec.AddObserver(recorder)
	}

	bridgeOpts := []bridge.Option{bridge.WithLogger(logrus.WithField("component", "bridge"))}
	var feed *viz.Feed
	if cfg.Monitor {
		feed = viz.NewFeed(0)
		exec.AddObserver(feed)
		bridgeOpts = append(bridgeOpts, bridge.WithStateHook(feed.OnConnState))

		// The monitor owns the terminal; logs go to a file instead.
		closeLog, err := redirectLogs(cfg.Record.DataDir)
		if err != nil {
			return err
		}
		defer closeLog()
	}

	coord := bridge.NewCoordinator()
	acceptor, err := bridge.Listen(cfg.Listen, coord, bridgeOpts...)
	if err != nil {
		return err
	}
	loop := sim.NewLoop(coord, exec, cfg.Sim.TickInterval)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return acceptor.Serve(gctx) })
	g.Go(func() error { return loop.Run(gctx) })
	if feed != nil {
		g.Go(func() error {
			defer stop()
			return viz.Run(gctx, feed, acceptor.Addr().String())
		})
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- g.Wait() }()

	select {
	case err = <-waitErr:
	case <-ctx.Done():
		log.Info("shutting down")
		if serr := acceptor.Shutdown(cfg.Shutdown); serr != nil {
			log.WithError(serr).Warn("bridge did not stop in time")
			err = serr
		} else {
			err = <-waitErr
		}
	}

	summary := exec.Metrics()
	log.WithFields(logrus.Fields{
		"steps":    exec.Steps(),
		"episodes": exec.Episodes(),
		"dropped":  exec.Dropped(),
		"ticks":    loop.Ticks(),
	}).Info("session finished")

	if recorder != nil {
		if serr := saveSession(cfg, preset, started, recorder, exec, summary); serr != nil {
			log.WithError(serr).Error("failed to save session")
			if err == nil {
				err = serr
			}
		}
	}
	return err
}

func saveSession(cfg *config.Config, preset string, started time.Time, rec *storage.Recorder, exec *sim.Executor, summary map[string]float64) error {
	st := storage.New(cfg.Record.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.Save(storage.SessionMetadata{
		Addr:       cfg.Listen,
		Preset:     preset,
		Started:    started,
		Ended:      time.Now(),
		Dt:         cfg.Sim.Dt,
		Integrator: cfg.Sim.Integrator,
		Steps:      exec.Steps(),
		Episodes:   exec.Episodes(),
		Dropped:    exec.Dropped(),
		Metrics:    summary,
	}, rec.Records())
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"session": id, "records": rec.Len()}).Info("session saved")
	return nil
}

func redirectLogs(dir string) (func(), error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "stepbridge.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	prev := logrus.StandardLogger().Out
	logrus.SetOutput(f)
	return func() {
		logrus.SetOutput(prev)
		_ = f.Close()
	}, nil
}
