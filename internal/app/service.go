// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	convqueue "github.com/halcyonlabs/carepulse/internal/adapters/mq/queue"
	workerpool "github.com/halcyonlabs/carepulse/internal/adapters/mq/worker"
	"github.com/halcyonlabs/carepulse/internal/adapters/repository"
	"github.com/halcyonlabs/carepulse/internal/domain/dedupe"
	"github.com/halcyonlabs/carepulse/internal/domain/model"
	"github.com/halcyonlabs/carepulse/internal/domain/types"
	"github.com/halcyonlabs/carepulse/internal/domain/wellness"
	"github.com/halcyonlabs/carepulse/pkg/logger"
	"github.com/halcyonlabs/carepulse/pkg/metrics"
)

// Default service configuration.
const (
	defaultQueueSize     = 100000
	defaultDedupeSize    = 50000
	defaultShardCount    = 8
	defaultMaxReports    = 500
	defaultCriticalScore = 40
	defaultTrendWindow   = 30 * 24 * time.Hour
)

// Service wires dedupe, queue, workers, the wellness evaluator and the
// patient store together and exposes the read models the API serves.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     *repository.MemStore
	deduper   dedupe.Deduper
	queue     *convqueue.InMemoryQueue
	evaluator *wellness.Evaluator
	pool      *workerpool.Pool

	// Configuration
	workerCount         int
	queueSize           int
	dedupeSize          int
	shardCount          int
	maxReports          int
	criticalScoreCutoff int
	trendWindow         time.Duration
	baselines           map[string]float64

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the conversation queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the store's shard count.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithMaxReportsPerPatient caps the per-patient report history.
func WithMaxReportsPerPatient(max int) Option {
	return func(s *Service) {
		if max > 0 {
			s.maxReports = max
		}
	}
}

// WithCriticalScoreCutoff sets the composite score below which a critical
// alert is raised.
func WithCriticalScoreCutoff(cutoff int) Option {
	return func(s *Service) {
		if cutoff > 0 {
			s.criticalScoreCutoff = cutoff
		}
	}
}

// WithTrendWindow sets the window the trend alert looks back over.
func WithTrendWindow(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.trendWindow = window
		}
	}
}

// WithBaselines overrides per-metric baselines, keyed by metric key.
func WithBaselines(baselines map[string]float64) Option {
	return func(s *Service) {
		s.baselines = baselines
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:         runtime.NumCPU() * 2,
		queueSize:           defaultQueueSize,
		dedupeSize:          defaultDedupeSize,
		shardCount:          defaultShardCount,
		maxReports:          defaultMaxReports,
		criticalScoreCutoff: defaultCriticalScore,
		trendWindow:         defaultTrendWindow,
		stopCh:              make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting wellness service...")

	table, err := wellness.NewDefinitionTable(
		wellness.DefaultDefinitions(),
		wellness.WithBaselines(s.baselines),
	)
	if err != nil {
		return fmt.Errorf("building metric definitions: %w", err)
	}
	s.evaluator = wellness.NewEvaluator(table)

	s.store = repository.NewMemStore(ctx,
		repository.WithShardCount(s.shardCount),
		repository.WithMaxReportsPerPatient(s.maxReports),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = convqueue.NewInMemoryQueue(
		convqueue.WithCapacity(s.queueSize),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.evaluator, s.store,
		workerpool.WithCriticalScoreCutoff(s.criticalScoreCutoff),
		workerpool.WithTrendWindow(s.trendWindow),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "wellness service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("metricDefinitions", table.Len()),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping wellness service...")

	if s.pool != nil {
		s.pool.Stop()
	}
	if s.queue != nil {
		_ = s.queue.Close()
	}

	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "wellness service stopped")
}

// SeenAndRecord atomically checks if a conversation id was seen and records
// it if not. Returns true if the conversation was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordConversationDuplicate()
	}
	return seen
}

// Unrecord removes a conversation id from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits a conversation for asynchronous evaluation. It returns
// false when the queue is saturated or closed.
func (s *Service) Enqueue(ctx context.Context, conv model.Conversation) bool {
	if conv.StartedAt.IsZero() {
		conv.StartedAt = time.Now().UTC()
	}

	ok := s.queue.Enqueue(ctx, conv)
	if ok {
		metrics.UpdateQueueSize(s.queue.Len(ctx))
	}
	return ok
}

// UpsertPatient creates or updates a patient profile.
func (s *Service) UpsertPatient(ctx context.Context, p model.Patient) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return s.store.UpsertPatient(ctx, p)
}

// GetPatient returns one patient profile.
func (s *Service) GetPatient(ctx context.Context, patientID string) (types.PatientView, error) {
	p, err := s.store.Patient(ctx, patientID)
	if err != nil {
		return types.PatientView{}, err
	}
	return toPatientView(p), nil
}

// ListPatients returns all patient profiles ordered by id.
func (s *Service) ListPatients(ctx context.Context) ([]types.PatientView, error) {
	patients, err := s.store.Patients(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.PatientView, len(patients))
	for i, p := range patients {
		out[i] = toPatientView(p)
	}
	return out, nil
}

// ConversationHistory returns a patient's evaluated conversations within
// the window, newest first.
func (s *Service) ConversationHistory(ctx context.Context, patientID string, window time.Duration, limit int) ([]types.ConversationReport, error) {
	since := time.Now().UTC().Add(-window)
	records, err := s.store.Reports(ctx, patientID, since, limit)
	if err != nil {
		return nil, err
	}
	out := make([]types.ConversationReport, len(records))
	for i, r := range records {
		out[i] = toConversationReport(r)
	}
	return out, nil
}

// Trend summarizes a patient's composite score movement over the window.
// The label is echoed back so the dashboard knows which window was applied.
func (s *Service) Trend(ctx context.Context, patientID string, window time.Duration, label string) (types.TrendSummary, error) {
	since := time.Now().UTC().Add(-window)
	points, err := s.store.Scores(ctx, patientID, since)
	if err != nil {
		return types.TrendSummary{}, err
	}

	scores := make([]float64, len(points))
	trendPoints := make([]types.TrendPoint, len(points))
	for i, p := range points {
		scores[i] = float64(p.Score)
		trendPoints[i] = types.TrendPoint{
			ConversationID: p.ConversationID,
			Score:          p.Score,
			StartedAt:      p.StartedAt,
		}
	}

	firstAvg, secondAvg := wellness.TrendHalves(scores)
	return types.TrendSummary{
		PatientID:     patientID,
		Window:        label,
		Direction:     wellness.Trend(scores),
		FirstHalfAvg:  firstAvg,
		SecondHalfAvg: secondAvg,
		Points:        trendPoints,
	}, nil
}

// LatestMetrics returns the metric breakdown of a patient's most recent
// conversation.
func (s *Service) LatestMetrics(ctx context.Context, patientID string) (types.ConversationReport, error) {
	record, err := s.store.LatestReport(ctx, patientID)
	if err != nil {
		return types.ConversationReport{}, err
	}
	return toConversationReport(record), nil
}

// Alerts returns a patient's alerts, newest first.
func (s *Service) Alerts(ctx context.Context, patientID string, includeAcked bool) ([]types.AlertView, error) {
	alerts, err := s.store.Alerts(ctx, patientID, includeAcked)
	if err != nil {
		return nil, err
	}
	out := make([]types.AlertView, len(alerts))
	for i, a := range alerts {
		out[i] = toAlertView(a)
	}
	return out, nil
}

// AckAlert acknowledges an alert by id. Acking twice is a no-op.
func (s *Service) AckAlert(ctx context.Context, alertID string) (types.AlertView, error) {
	a, err := s.store.AckAlert(ctx, alertID)
	if err != nil {
		return types.AlertView{}, err
	}
	return toAlertView(a), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		totalPatients := s.store.CountPatients(ctx)

		stats["queueLength"] = queueLen
		stats["totalPatients"] = totalPatients
		stats["dedupeEntries"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalPatients(totalPatients)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

func toPatientView(p model.Patient) types.PatientView {
	return types.PatientView{
		PatientID: p.PatientID,
		Name:      p.Name,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toConversationReport(r repository.Record) types.ConversationReport {
	readings := make([]types.MetricReading, len(r.Readings))
	for i, reading := range r.Readings {
		readings[i] = types.MetricReading{
			Key:          string(reading.Key),
			Label:        reading.Label,
			Value:        reading.Value,
			Status:       string(reading.Status),
			DeviationPct: reading.DeviationPct,
			Comparison:   string(reading.Comparison),
		}
	}
	return types.ConversationReport{
		ConversationID:  r.ConversationID,
		PatientID:       r.PatientID,
		StartedAt:       r.StartedAt,
		DurationSeconds: r.DurationSeconds,
		Summary:         r.Summary,
		Score:           r.Score,
		Readings:        readings,
	}
}

func toAlertView(a model.Alert) types.AlertView {
	return types.AlertView{
		AlertID:        a.AlertID,
		PatientID:      a.PatientID,
		ConversationID: a.ConversationID,
		Severity:       string(a.Severity),
		Reason:         a.Reason,
		CreatedAt:      a.CreatedAt,
		Acknowledged:   a.Acknowledged,
		AcknowledgedAt: a.AcknowledgedAt,
	}
}
