package config

import (
	"fmt"
	"time"
)

// ServiceName identifies this application in logs and APM dashboards.
const ServiceName = "projects"

// ObservabilityConfig groups all configuration related to logging and
// runtime visibility.
//
// It sits under Config.Observability and may be omitted entirely, in
// which case DefaultObservabilityConfig is injected.
type ObservabilityConfig struct {
	// ServiceName identifies this application in logs/traces.
	ServiceName string `koanf:"service_name"`

	// Environment labels telemetry (local, development, production...).
	Environment string `koanf:"environment"`

	// Logging controls the structured logger.
	Logging LoggingConfig `koanf:"logging"`

	// NewRelic is optional. An empty license key disables the agent.
	NewRelic NewRelicConfig `koanf:"new_relic"`
}

// LoggingConfig holds application logging configuration.
type LoggingConfig struct {
	// Level is the verbosity threshold (debug/info/warn/error).
	Level string `koanf:"level"`

	// Format selects "console" (human friendly) or "json".
	Format string `koanf:"format"`

	// SlowQueryThreshold marks statements that should be logged at warn
	// level even when statement tracing is off.
	SlowQueryThreshold time.Duration `koanf:"slow_query_threshold"`
}

// NewRelicConfig holds configuration for the New Relic agent.
type NewRelicConfig struct {
	LicenseKey              string `koanf:"license_key"`
	AppLogForwardingEnabled bool   `koanf:"app_log_forwarding_enabled"`
	DebugLogging            bool   `koanf:"debug_logging"`
}

// DefaultObservabilityConfig provides a safe set of defaults.
func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		ServiceName: ServiceName,
		Environment: "local",
		Logging: LoggingConfig{
			Level:              "warn",
			Format:             "console",
			SlowQueryThreshold: 100 * time.Millisecond,
		},
		NewRelic: NewRelicConfig{
			AppLogForwardingEnabled: true,
		},
	}
}

// Validate applies rules that go beyond struct tags.
func (c *ObservabilityConfig) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be one of: debug, info, warn, error)", c.Logging.Level)
	}

	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid logging format: %s (must be console or json)", c.Logging.Format)
	}

	if c.Logging.SlowQueryThreshold < 0 {
		return fmt.Errorf("logging slow_query_threshold must be non-negative")
	}

	return nil
}

// GetLogLevel returns the effective log level to use at runtime.
//
// Production defaults to "info" and development to "debug" when nothing
// is set; otherwise the configured value wins.
func (c *ObservabilityConfig) GetLogLevel() string {
	switch c.Environment {
	case "production":
		if c.Logging.Level == "" {
			return "info"
		}
	case "development", "local":
		if c.Logging.Level == "" {
			return "debug"
		}
	}

	return c.Logging.Level
}

// IsProduction reports whether the application is running in production mode.
func (c *ObservabilityConfig) IsProduction() bool {
	return c.Environment == "production"
}

// NewRelicEnabled reports whether an APM agent should be started.
func (c *ObservabilityConfig) NewRelicEnabled() bool {
	return c.NewRelic.LicenseKey != ""
}
