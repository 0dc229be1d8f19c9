// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer sources.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// UserID identifies the monitored user on scored sessions.
	UserID string `koanf:"user_id"`

	// DBPath points at the SQLite session database. Empty selects the
	// in-memory store.
	DBPath string `koanf:"db_path"`

	// SourceCapacity bounds the in-memory usage event buffer.
	SourceCapacity int `koanf:"source_capacity"`

	// QueueSize bounds the persistence queue.
	QueueSize int `koanf:"queue_size"`

	// StoreCapacity bounds the in-memory session store.
	StoreCapacity int `koanf:"store_capacity"`

	// CacheCapacity bounds the prediction result cache.
	CacheCapacity int `koanf:"cache_capacity"`

	// MonitorBaseSeconds is the baseline full-scoring interval.
	MonitorBaseSeconds int `koanf:"monitor_base_seconds"`

	// MonitorMaxSeconds caps the adaptive full-scoring interval.
	MonitorMaxSeconds int `koanf:"monitor_max_seconds"`

	// InstantSeconds is the instant assessment cadence.
	InstantSeconds int `koanf:"instant_seconds"`

	// RetryAttempts is the in-tick scoring retry limit.
	RetryAttempts int `koanf:"retry_attempts"`

	// MaxSessionsLimit caps GET /sessions?limit.
	MaxSessionsLimit int `koanf:"max_sessions_limit"`
}

// New creates a Config with service defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		UserID:             "default_user",
		DBPath:             "",
		SourceCapacity:     100_000,
		QueueSize:          10_000,
		StoreCapacity:      10_000,
		CacheCapacity:      100,
		MonitorBaseSeconds: 30,
		MonitorMaxSeconds:  300,
		InstantSeconds:     5,
		RetryAttempts:      3,
		MaxSessionsLimit:   1000,
	}
}
