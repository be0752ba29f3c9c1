package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
)

// Store drivers selected from the database URL scheme.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongodb"
)

// Config holds runtime configuration.
type Config struct {
	Port          string   `koanf:"port"`
	DatabaseURL   string   `koanf:"database_url"`
	JWTSecret     string   `koanf:"jwt_secret"`
	JWTIssuer     string   `koanf:"jwt_issuer"`
	JWTTTLMinutes int      `koanf:"jwt_ttl_minutes"`
	BcryptCost    int      `koanf:"bcrypt_cost"`
	CORSOrigins   []string `koanf:"cors_origins"`
	LogFormat     string   `koanf:"log_format"`
	MetricsAddr   string   `koanf:"metrics_addr"`
	AutoMigrate   bool     `koanf:"auto_migrate"`
}

var defaults = map[string]any{
	"port":            "5000",
	"jwt_issuer":      "online-learning-backend",
	"jwt_ttl_minutes": 6000,
	"bcrypt_cost":     10,
	"cors_origins":    []string{"*"},
	"log_format":      "json",
	"metrics_addr":    "127.0.0.1:9100",
	"auto_migrate":    true,
}

// envKeys maps environment variables to config keys. Later entries win, so
// DATABASE_URL overrides the MONGO_URI alias.
var envKeys = []struct{ env, key string }{
	{"PORT", "port"},
	{"MONGO_URI", "database_url"},
	{"DATABASE_URL", "database_url"},
	{"JWT_SECRET", "jwt_secret"},
	{"JWT_ISSUER", "jwt_issuer"},
	{"JWT_TTL_MINUTES", "jwt_ttl_minutes"},
	{"BCRYPT_COST", "bcrypt_cost"},
	{"CORS_ALLOWED_ORIGINS", "cors_origins"},
	{"LOG_FORMAT", "log_format"},
	{"METRICS_ADDR", "metrics_addr"},
	{"AUTO_MIGRATE", "auto_migrate"},
}

// Load builds the configuration from defaults, an optional YAML file, the
// environment and finally any flags explicitly set on flags. Either of path
// or flags may be empty/nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return Config{}, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	for _, e := range envKeys {
		raw := strings.TrimSpace(os.Getenv(e.env))
		if raw == "" {
			continue
		}
		var val any = raw
		if e.key == "cors_origins" {
			val = parseCSV(raw)
		}
		if err := k.Set(e.key, val); err != nil {
			return Config{}, fmt.Errorf("set %s from environment: %w", e.env, err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
			return strings.ReplaceAll(key, "-", "_"), value
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required values and ranges.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if _, err := c.StoreDriver(); err != nil {
		return err
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTTTLMinutes <= 0 {
		return fmt.Errorf("JWT_TTL_MINUTES must be positive, got %d", c.JWTTTLMinutes)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'text', got %q", c.LogFormat)
	}
	return nil
}

// StoreDriver derives the store backend from the database URL scheme.
func (c Config) StoreDriver() (string, error) {
	u, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return "", fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		return DriverPostgres, nil
	case "mongodb", "mongodb+srv":
		return DriverMongo, nil
	default:
		return "", fmt.Errorf("DATABASE_URL scheme %q is not supported", u.Scheme)
	}
}

// JWTTTL returns the token lifetime.
func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
