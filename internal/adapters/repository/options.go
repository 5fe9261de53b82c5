package repository

import "time"

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithShardCount sets the number of patient shards.
func WithShardCount(count int) Option {
	return func(s *MemStore) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithMaxReportsPerPatient caps each patient's retained history.
// A non-positive cap disables trimming.
func WithMaxReportsPerPatient(limit int) Option {
	return func(s *MemStore) {
		s.maxReports = limit
	}
}

// WithMetricsUpdateInterval sets the interval for background shard metrics.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *MemStore) {
		if interval > 0 {
			s.metricsInterval = interval
		}
	}
}
