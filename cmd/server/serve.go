package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/hongminglow/learning-be/internal/errutil"
	"github.com/hongminglow/learning-be/internal/logging"
	"github.com/hongminglow/learning-be/internal/metrics"
	"github.com/hongminglow/learning-be/internal/server"
)

const shutdownTimeout = 15 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API serving /register, /login, /me and /health,
plus the metrics server when --metrics-addr is set.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	logger := logging.SetDefault(serviceName, version, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		errutil.LogError(ctx, logger, "open store failed", err)
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		closeStore(closeCtx, store, logger)
	}()

	if err := waitForStore(ctx, store, pingBackoff(), logger); err != nil {
		errutil.LogError(ctx, logger, "store unreachable", err)
		return err
	}

	if err := migrateIfNeeded(cfg, logger); err != nil {
		errutil.LogError(ctx, logger, "apply migrations failed", err)
		return err
	}

	var m *metrics.Metrics
	var metricsErrs <-chan error
	if cfg.MetricsAddr != "" {
		obs := metrics.NewServer(cfg.MetricsAddr, store.Ping, logger)
		metricsErrs, err = obs.Start()
		if err != nil {
			errutil.LogError(ctx, logger, "start metrics server failed", err)
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := obs.Stop(stopCtx); err != nil {
				logger.Warn("stop metrics server", "error", err)
			}
		}()
		m = obs.Metrics()
	}

	srv, err := server.New(cfg, store, m, logger)
	if err != nil {
		return oops.Code("SERVER_INIT_FAILED").Wrap(err)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Start() }()

	select {
	case <-ctx.Done():
		logger.Info("shutting down", "reason", context.Cause(ctx))
	case err := <-serveErr:
		if err != nil {
			errutil.LogError(ctx, logger, "http server failed", err)
			return err
		}
		return nil
	case err, ok := <-metricsErrs:
		if ok && err != nil {
			logger.Error("metrics server failed; shutting down", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown error", "error", err)
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}
