package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/hongminglow/learning-be/internal/config"
	"github.com/hongminglow/learning-be/internal/storage"
	"github.com/hongminglow/learning-be/internal/storage/mongodb"
	"github.com/hongminglow/learning-be/internal/storage/postgres"
)

const (
	pingAttempts    = 5
	pingBaseBackoff = 500 * time.Millisecond
	pingTimeout     = 3 * time.Second
)

// openStore connects to the backend named by the database URL scheme.
func openStore(ctx context.Context, cfg config.Config) (storage.Backend, error) {
	driver, err := cfg.StoreDriver()
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	switch driver {
	case config.DriverMongo:
		store, err := mongodb.NewStudentStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, oops.Code("DB_CONNECT_FAILED").With("driver", driver).Wrap(err)
		}
		return store, nil
	default:
		store, err := postgres.NewStudentStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, oops.Code("DB_CONNECT_FAILED").With("driver", driver).Wrap(err)
		}
		return store, nil
	}
}

type closer interface {
	Close(ctx context.Context) error
}

// closeStore releases the store, logging rather than returning a failure.
func closeStore(ctx context.Context, store closer, logger *slog.Logger) {
	if err := store.Close(ctx); err != nil {
		logger.WarnContext(ctx, "close store", "error", err)
	}
}

// pinger is the part of storage.Backend waitForStore needs.
type pinger interface {
	Ping(ctx context.Context) error
}

// waitForStore pings the store with exponential backoff until it answers.
func waitForStore(ctx context.Context, store pinger, backoff retry.Backoff, logger *slog.Logger) error {
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			logger.WarnContext(ctx, "store not reachable yet", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("DB_UNREACHABLE").With("attempts", attempt).Wrap(err)
	}
	return nil
}

// pingBackoff is the startup ping schedule; tests shorten it.
var pingBackoff = defaultPingBackoff

func defaultPingBackoff() retry.Backoff {
	return retry.WithMaxRetries(pingAttempts-1, retry.NewExponential(pingBaseBackoff))
}

// migrateIfNeeded applies the embedded schema when the store is Postgres.
func migrateIfNeeded(cfg config.Config, logger *slog.Logger) error {
	driver, err := cfg.StoreDriver()
	if err != nil || driver != config.DriverPostgres || !cfg.AutoMigrate {
		return err
	}

	migrator, err := postgres.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Warn("close migrator", "error", closeErr)
		}
	}()

	if err := migrator.Up(); err != nil {
		return err
	}
	version, _, err := migrator.Version()
	if err != nil {
		return err
	}
	logger.Info("schema up to date", "version", version)
	return nil
}
