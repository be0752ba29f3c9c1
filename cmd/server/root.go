package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hongminglow/learning-be/internal/config"
)

const serviceName = "learning-backend"

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command. Without a subcommand it serves HTTP.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          serviceName,
		Short:        "Online-learning authentication backend",
		Long:         `Registers students, logs them in and issues the bearer tokens protected routes verify.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file path (YAML)")
	flags.String("port", "5000", "HTTP listen port")
	flags.String("database-url", "", "postgres:// or mongodb:// connection string")
	flags.String("log-format", "json", "log format: json or text")
	flags.String("metrics-addr", "127.0.0.1:9100", "metrics and health probe address; empty disables")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// loadConfig reads .env, then layers the config file, environment and flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found; relying on existing environment")
	}
	return config.Load(configFile, cmd.Flags())
}
