// Package worker defines worker contracts for asynchronous conversation evaluation.
package worker

import (
	"sync/atomic"
	"time"

	"github.com/halcyonlabs/carepulse/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithCriticalScoreCutoff sets the composite score below which a
// conversation raises a critical alert.
func WithCriticalScoreCutoff(cutoff int) Option {
	return func(w *InMemoryWorker) {
		if cutoff > 0 {
			w.criticalScoreCutoff = cutoff
		}
	}
}

// WithTrendWindow sets how far back the score series reaches when
// checking for a declining trend.
func WithTrendWindow(window time.Duration) Option {
	return func(w *InMemoryWorker) {
		if window > 0 {
			w.trendWindow = window
		}
	}
}

// withProcessedCounter shares the owning pool's throughput counter with
// the worker.
func withProcessedCounter(counter *atomic.Int64) Option {
	return func(w *InMemoryWorker) {
		w.processed = counter
	}
}
