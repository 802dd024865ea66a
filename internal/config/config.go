// Package config manages environment variables.
//
// It reads variables from the process environment (and an optional
// `.env` file), loads them into structured Go types, and validates
// that required values are present so they can be reused across the
// application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Layer them over built-in defaults for a local development database.
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for the observability block.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads `.env` into the process environment
	// before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the prefix PROJECTS_. After the prefix is
	removed, a double underscore marks nesting so that keys containing a
	single underscore survive intact:

	  PROJECTS_DATABASE__SSL_MODE -> database.ssl_mode -> Config.Database.SSLMode
*/

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "PROJECTS_"

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If no observability
// value is provided, defaults are injected.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// DatabaseConfig contains the PostgreSQL connection parameters.
//
// There are no pool settings: every repository operation opens its own
// connection and closes it when done.
type DatabaseConfig struct {
	Host     string `koanf:"host" validate:"required"`
	Port     int    `koanf:"port" validate:"required,min=1,max=65535"`
	User     string `koanf:"user" validate:"required"`
	Password string `koanf:"password" validate:"required"`
	Name     string `koanf:"name" validate:"required"`

	// SSLMode is passed straight to the driver. "disable" is the local
	// development setting that skips TLS entirely.
	SSLMode string `koanf:"ssl_mode" validate:"required,oneof=disable allow prefer require verify-ca verify-full"`

	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"min=0"`
}

// defaults mirror a database created with `createdb projects` owned by a
// `projects` role on the local machine.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"primary.env":                                        "local",
		"database.host":                                      "localhost",
		"database.port":                                      5432,
		"database.user":                                      "projects",
		"database.password":                                  "projects",
		"database.name":                                      "projects",
		"database.ssl_mode":                                  "disable",
		"database.connect_timeout":                           "10s",
		"observability.logging.level":                        "warn",
		"observability.logging.format":                       "console",
		"observability.logging.slow_query_threshold":         "100ms",
		"observability.new_relic.app_log_forwarding_enabled": true,
	}
}

// envKey converts PROJECTS_DATABASE__SSL_MODE into database.ssl_mode.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

// LoadConfig loads configuration from defaults and environment variables,
// unmarshals it into Config, validates it and applies observability defaults.
//
// Unlike a long-running server this returns errors instead of exiting: the
// console decides how to report them.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("could not load config defaults: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name is fixed so APM dashboards stay consistent.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// IsLocal reports whether the app runs against a developer database.
// Local runs trace every SQL statement.
func (c *Config) IsLocal() bool {
	return c.Primary.Env == "local"
}
