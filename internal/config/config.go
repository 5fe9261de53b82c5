// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory conversation queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of evaluation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the patient store.
	ShardCount int `koanf:"shard_count"`

	// MaxReportsPerPatient caps the per-patient report history.
	MaxReportsPerPatient int `koanf:"max_reports_per_patient"`

	// CriticalScoreCutoff is the composite score below which a critical
	// alert is raised.
	CriticalScoreCutoff int `koanf:"critical_score_cutoff"`

	// TrendWindowDays sets how far back trend alerts look.
	TrendWindowDays int `koanf:"trend_window_days"`

	// Baselines overrides per-metric expected values, keyed by metric key.
	Baselines map[string]float64 `koanf:"baselines"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use and currently
// unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		QueueSize:            100_000,
		WorkerCount:          runtime.NumCPU() * 2,
		DedupeSize:           50_000,
		ShardCount:           8,
		MaxReportsPerPatient: 500,
		CriticalScoreCutoff:  40,
		TrendWindowDays:      30,
	}
	return c
}
