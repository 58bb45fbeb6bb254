// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types and validates that required
// values are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Accept the bare variable names the original function was deployed with
//     (DATABASE, LOGIN, PASWWORD, HOST, DIALECT, PORT).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it is loaded into the
	// process env before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Key layout:
	- Prefixed env vars are read with EnvPrefix.
	- The first "_" after the prefix separates the section from the key,
	  e.g. USERCRUD_DATABASE_SSL_MODE -> database.ssl_mode -> Config.Database.SSLMode
	- Sections are one level deep so multi-word keys keep their underscores.
*/

// EnvPrefix is the prefix for every application environment variable.
const EnvPrefix = "USERCRUD_"

// Supported values of DatabaseConfig.Dialect.
const (
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
	DialectSQLite   = "sqlite"
)

// Config is the root configuration object for the application.
type Config struct {
	Primary       Primary             `koanf:"primary" validate:"required"`
	Server        ServerConfig        `koanf:"server" validate:"required"`
	Database      DatabaseConfig      `koanf:"database" validate:"required"`
	Observability ObservabilityConfig `koanf:"observability" validate:"required"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	BodyLimit          string   `koanf:"body_limit" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// DatabaseConfig contains connection parameters and pool tuning.
//
// Host and User may be empty for sqlite, where Name is the database file.
// ConnMaxLifetime, ConnMaxIdleTime and ConnectTimeout are seconds.
type DatabaseConfig struct {
	Dialect         string `koanf:"dialect" validate:"required,oneof=postgres mysql sqlite"`
	Host            string `koanf:"host" validate:"required_unless=Dialect sqlite"`
	Port            int    `koanf:"port" validate:"required_unless=Dialect sqlite"`
	User            string `koanf:"user" validate:"required_unless=Dialect sqlite"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
	ConnectTimeout  int    `koanf:"connect_timeout" validate:"required,min=1"`
}

// defaults are loaded before any environment source.
var defaults = map[string]any{
	"primary.env": "development",

	"server.port":          "8080",
	"server.read_timeout":  30,
	"server.write_timeout": 30,
	"server.idle_timeout":  60,
	"server.body_limit":    "1M",

	"database.dialect":            DialectPostgres,
	"database.port":               5432,
	"database.ssl_mode":           "disable",
	"database.max_open_conns":     10,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  300,
	"database.conn_max_idle_time": 60,
	"database.connect_timeout":    5,

	"observability.service_name":                "usercrud",
	"observability.log_level":                   "",
	"observability.log_format":                  "json",
	"observability.slow_query_threshold":        "100ms",
	"observability.new_relic_license_key":       "",
	"observability.new_relic_log_forwarding":    true,
	"observability.new_relic_distributed_trace": true,
	"observability.new_relic_debug_logging":     false,
}

// legacyKeys maps the bare variable names of the original deployment onto
// koanf keys. PASWWORD is misspelled on purpose: it is what existing
// deployments set.
var legacyKeys = map[string]string{
	"DATABASE": "database.name",
	"LOGIN":    "database.user",
	"PASWWORD": "database.password",
	"PASSWORD": "database.password",
	"HOST":     "database.host",
	"DIALECT":  "database.dialect",
	"PORT":     "database.port",
}

// envKey turns USERCRUD_DATABASE_SSL_MODE into database.ssl_mode.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

// LoadConfig loads configuration from defaults and environment variables,
// unmarshals it into Config, validates it and returns the resulting config.
//
// Precedence (lowest first): defaults, legacy bare names, USERCRUD_ vars.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("loading config defaults: %w", err)
	}

	err := k.Load(env.Provider("", ".", func(s string) string {
		return legacyKeys[s]
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading legacy env variables: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	mainConfig.Database.Dialect = strings.ToLower(mainConfig.Database.Dialect)

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Environment always follows primary.env so logs and traces agree.
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
