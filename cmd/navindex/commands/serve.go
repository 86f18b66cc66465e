package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/navindex/internal/config"
	"git.home.luguber.info/inful/navindex/internal/daemon"
	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/gitsync"
	"git.home.luguber.info/inful/navindex/internal/logfields"
	"git.home.luguber.info/inful/navindex/internal/metrics"
	"git.home.luguber.info/inful/navindex/internal/retry"
	"git.home.luguber.info/inful/navindex/internal/server/events"
	"git.home.luguber.info/inful/navindex/internal/server/httpserver"
	"git.home.luguber.info/inful/navindex/internal/store"
	"git.home.luguber.info/inful/navindex/internal/verify"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr    string `help:"Listen address, overrides server.addr"`
	NoStore bool   `help:"Do not record snapshots"`
}

func (c *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}
	g.Logger.Info("Starting navindex server", slog.String("config", cfg.String()))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return RunServer(ctx, cfg, !c.NoStore, g.Logger)
}

// RunServer wires the daemon and the HTTP server and blocks until ctx is
// done or the daemon fails.
func RunServer(ctx context.Context, cfg *config.Config, withStore bool, logger *slog.Logger) error {
	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(reg)
	hub := events.NewHub(logger)
	defer hub.Close()

	deps := daemon.Deps{Hub: hub, Recorder: recorder, Logger: logger}

	if withStore {
		st, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer func() {
			if err := st.Close(); err != nil {
				logger.Warn("Closing snapshot store failed", logfields.Error(err))
			}
		}()
		deps.Store = st
	}

	vopts := verify.Options{CacheSize: cfg.Verify.CacheSize, SkipIndex: cfg.Verify.SkipIndex}
	if cfg.Verify.NATS.Enabled() {
		client, err := verify.NewNATSClient(ctx, cfg.Verify.NATS)
		if err != nil {
			// Verification still runs; only publishing is lost.
			logger.Warn("NATS unavailable, broken hrefs will not be published", logfields.Error(err))
		} else {
			defer func() { _ = client.Close() }()
			vopts.Publisher = client
		}
	}
	verifier, err := verify.New(vopts)
	if err != nil {
		return err
	}
	deps.Verifier = verifier

	if cfg.Git != nil {
		syncer, err := gitsync.New(*cfg.Git, retry.FromConfig(cfg.Retry), logger)
		if err != nil {
			return err
		}
		deps.Syncer = syncer
	}

	d, err := daemon.New(cfg, deps)
	if err != nil {
		return err
	}

	srv := httpserver.New(cfg.Server.Addr, httpserver.Options{
		Source:   d,
		Hub:      hub,
		Recorder: recorder,
		Registry: reg,
		Logger:   logger,
	})
	if err := srv.Start(ctx); err != nil {
		return err
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(runCtx) }()

	var runErr error
	done := false
	select {
	case runErr = <-errCh:
		done = true
		if runErr != nil {
			runErr = errors.WrapError(runErr, errors.CategoryRuntime, "daemon stopped").Build()
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping server")
	}

	stopCtx, stopCancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeoutDuration())
	defer stopCancel()
	if err := srv.Stop(stopCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", logfields.Error(err))
	}
	if !done {
		cancelRun()
		<-errCh
	}
	logger.Info("Server stopped")
	return runErr
}
