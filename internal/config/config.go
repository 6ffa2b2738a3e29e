// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file, and env vars.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RedisAddr points storage at a Redis instance. Empty keeps the
	// in-process store.
	RedisAddr string `koanf:"redis_addr"`

	// RedisPassword authenticates against Redis when required.
	RedisPassword string `koanf:"redis_password"`

	// RedisPrefix namespaces every key this process writes.
	RedisPrefix string `koanf:"redis_prefix"`

	// CatalogPath optionally loads the competition catalog from a YAML
	// file instead of the built-in line-up.
	CatalogPath string `koanf:"catalog_path"`

	// PollIntervalMS sets the sync fallback polling cadence.
	PollIntervalMS int `koanf:"poll_interval_ms"`

	// RoomCodeDigits sets the length of generated room codes.
	RoomCodeDigits int `koanf:"room_code_digits"`

	// RoomCreateAttempts bounds code-collision retries on room creation.
	RoomCreateAttempts int `koanf:"room_create_attempts"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		RedisPrefix:        "encore:",
		PollIntervalMS:     2000,
		RoomCodeDigits:     4,
		RoomCreateAttempts: 16,
	}
}
