// Package config resolves runtime settings for the task store from the
// environment.
//
// The only required value is the backend endpoint. Everything else has a
// default, and a missing endpoint is not an error here: the store reports
// itself as unconfigured instead.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment keys.
const (
	KeyPostgresURL      = "postgres_url"
	KeyDatabaseURL      = "database_url"
	KeyURLOverride      = "database_url_override"
	KeyConnectTimeout   = "connect_timeout"
	KeyOperationTimeout = "operation_timeout"
	KeyMaxResults       = "max_results"
	KeyLogLevel         = "log_level"
)

// Config holds the task store configuration.
type Config struct {
	// DatabaseURL is the backend endpoint. Empty means unconfigured.
	DatabaseURL      string
	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
	MaxResults       int
	LogLevel         string
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		ConnectTimeout:   5 * time.Second,
		OperationTimeout: 10 * time.Second,
		MaxResults:       500,
		LogLevel:         "info",
	}
}

// Configured reports whether a backend endpoint was resolved.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}

// NewViper returns a viper instance bound to the environment variables the
// store understands.
func NewViper() *viper.Viper {
	v := viper.New()
	def := Default()

	_ = v.BindEnv(KeyPostgresURL, "POSTGRES_URL")
	_ = v.BindEnv(KeyDatabaseURL, "DATABASE_URL")
	_ = v.BindEnv(KeyConnectTimeout, "TASKS_CONNECT_TIMEOUT")
	_ = v.BindEnv(KeyOperationTimeout, "TASKS_OPERATION_TIMEOUT")
	_ = v.BindEnv(KeyMaxResults, "TASKS_MAX_RESULTS")
	_ = v.BindEnv(KeyLogLevel, "TASKS_LOG_LEVEL")

	v.SetDefault(KeyConnectTimeout, def.ConnectTimeout)
	v.SetDefault(KeyOperationTimeout, def.OperationTimeout)
	v.SetDefault(KeyMaxResults, def.MaxResults)
	v.SetDefault(KeyLogLevel, def.LogLevel)
	return v
}

// Load reads the configuration from v. The endpoint is resolved in order:
// explicit override (CLI flag), POSTGRES_URL, DATABASE_URL.
func Load(v *viper.Viper) Config {
	cfg := Default()

	for _, key := range []string{KeyURLOverride, KeyPostgresURL, KeyDatabaseURL} {
		if url := strings.TrimSpace(v.GetString(key)); url != "" {
			cfg.DatabaseURL = url
			break
		}
	}

	if d := v.GetDuration(KeyConnectTimeout); d > 0 {
		cfg.ConnectTimeout = d
	}
	if d := v.GetDuration(KeyOperationTimeout); d > 0 {
		cfg.OperationTimeout = d
	}
	if n := v.GetInt(KeyMaxResults); n > 0 {
		cfg.MaxResults = n
	}
	if lvl := strings.TrimSpace(v.GetString(KeyLogLevel)); lvl != "" {
		cfg.LogLevel = strings.ToLower(lvl)
	}
	return cfg
}

// FromEnv is shorthand for Load(NewViper()).
func FromEnv() Config {
	return Load(NewViper())
}
