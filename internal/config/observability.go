package config

import (
	"fmt"
	"time"
)

// ObservabilityConfig groups logging and New Relic settings.
//
// Keys are flat inside the section, e.g.
// USERCRUD_OBSERVABILITY_NEW_RELIC_LICENSE_KEY -> observability.new_relic_license_key.
type ObservabilityConfig struct {
	// ServiceName identifies this service in logs and APM dashboards.
	ServiceName string `koanf:"service_name" validate:"required"`

	// Environment is copied from primary.env by LoadConfig.
	Environment string `koanf:"environment"`

	// LogLevel is debug, info, warn or error. Empty picks a default per
	// environment, see GetLogLevel.
	LogLevel string `koanf:"log_level"`

	// LogFormat is "json" or "console".
	LogFormat string `koanf:"log_format" validate:"required,oneof=json console"`

	// SlowQueryThreshold marks ORM queries slower than this as warnings.
	// Parsed from duration strings such as "100ms" or "1s".
	SlowQueryThreshold time.Duration `koanf:"slow_query_threshold"`

	// NewRelicLicenseKey enables the New Relic agent when non-empty.
	NewRelicLicenseKey string `koanf:"new_relic_license_key"`

	NewRelicLogForwarding    bool `koanf:"new_relic_log_forwarding"`
	NewRelicDistributedTrace bool `koanf:"new_relic_distributed_trace"`

	// NewRelicDebugLogging is off by default to avoid mixed log formats.
	NewRelicDebugLogging bool `koanf:"new_relic_debug_logging"`
}

// Validate applies rules that go beyond struct tags.
func (c *ObservabilityConfig) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}

	validLevels := map[string]bool{
		"":      true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid logging level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.SlowQueryThreshold < 0 {
		return fmt.Errorf("slow_query_threshold must be non-negative")
	}

	return nil
}

// GetLogLevel returns the effective log level.
//
// An explicit level always wins. Otherwise production logs at info and every
// other environment at debug.
func (c *ObservabilityConfig) GetLogLevel() string {
	if c.LogLevel != "" {
		return c.LogLevel
	}
	if c.IsProduction() {
		return "info"
	}
	return "debug"
}

// IsProduction reports whether the application is running in production mode.
func (c *ObservabilityConfig) IsProduction() bool {
	return c.Environment == "production"
}

// NewRelicEnabled reports whether a license key was configured.
func (c *ObservabilityConfig) NewRelicEnabled() bool {
	return c.NewRelicLicenseKey != ""
}
