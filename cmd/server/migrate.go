package main

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/hongminglow/learning-be/internal/config"
	"github.com/hongminglow/learning-be/internal/storage/postgres"
)

// NewMigrateCmd creates the migrate command and its subcommands.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
		Long: `Apply, roll back or inspect the embedded schema migrations.
MongoDB stores need no migrations; "migrate up" only ensures their indexes.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE:  runMigrateUp,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: withMigrator(func(cmd *cobra.Command, m *postgres.Migrator) error {
			if err := m.Down(); err != nil {
				return err
			}
			cmd.Println("Migrations rolled back")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: withMigrator(func(cmd *cobra.Command, m *postgres.Migrator) error {
			v, dirty, err := m.Version()
			if err != nil {
				return err
			}
			cmd.Printf("version %d (dirty: %t)\n", v, dirty)
			return nil
		}),
	})

	return cmd
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	driver, err := cfg.StoreDriver()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	if driver == config.DriverMongo {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore(ctx, store, slog.Default())
		cmd.Println("Indexes ensured")
		return nil
	}

	return withMigrator(func(cmd *cobra.Command, m *postgres.Migrator) error {
		if err := m.Up(); err != nil {
			return err
		}
		cmd.Println("Migrations completed successfully")
		return nil
	})(cmd, args)
}

func withMigrator(fn func(*cobra.Command, *postgres.Migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return oops.Code("CONFIG_INVALID").Wrap(err)
		}
		driver, err := cfg.StoreDriver()
		if err != nil {
			return oops.Code("CONFIG_INVALID").Wrap(err)
		}
		if driver != config.DriverPostgres {
			return oops.Code("MIGRATE_UNSUPPORTED").With("driver", driver).
				Errorf("%s migrations are only available for Postgres", cmd.Name())
		}

		m, err := postgres.NewMigrator(cfg.DatabaseURL)
		if err != nil {
			return oops.Code("MIGRATION_FAILED").With("operation", "open migrator").Wrap(err)
		}
		defer func() { _ = m.Close() }()

		return fn(cmd, m)
	}
}
