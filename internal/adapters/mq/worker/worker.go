// Package worker defines worker contracts for asynchronous conversation evaluation.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/halcyonlabs/carepulse/internal/adapters/repository"
	"github.com/halcyonlabs/carepulse/internal/domain/model"
	"github.com/halcyonlabs/carepulse/internal/domain/wellness"
	"github.com/halcyonlabs/carepulse/pkg/logger"
	"github.com/halcyonlabs/carepulse/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier   = 4 // multiplier for runtime.NumCPU()
	defaultCriticalScoreLimit = 40
	defaultTrendWindow        = 30 * 24 * time.Hour
	metricsUpdateInterval     = 5 * time.Second
	workerShutdownTimeout     = 5 * time.Second
	poolShutdownTimeout       = 30 * time.Second
)

// Event abstracts what workers read off the queue.
// Using the model.Conversation type for consistency.
type Event = model.Conversation

// Evaluator turns a conversation's metric samples into a wellness report.
type Evaluator interface {
	Evaluate(samples []wellness.Sample) wellness.Report
}

// Recorder persists evaluated reports and alerts, and serves the score
// history that trend alerts are derived from.
type Recorder interface {
	PutReport(ctx context.Context, r repository.Record) error
	Scores(ctx context.Context, patientID string, since time.Time) ([]repository.ScorePoint, error)
	AddAlert(ctx context.Context, a model.Alert) error
}

// Queue defines how workers receive conversations.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes conversations and writes wellness reports using the
// provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	// It will process any remaining conversations before stopping.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing conversations.
type InMemoryWorker struct {
	queue     Queue
	evaluator Evaluator
	recorder  Recorder
	name      string

	// Alerting configuration
	criticalScoreCutoff int
	trendWindow         time.Duration

	// Shared with the owning pool for throughput metrics.
	processed *atomic.Int64

	// Shutdown control
	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, evaluator Evaluator, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:               queue,
		evaluator:           evaluator,
		recorder:            recorder,
		name:                "worker",
		criticalScoreCutoff: defaultCriticalScoreLimit,
		trendWindow:         defaultTrendWindow,
		shutdown:            make(chan struct{}),
		done:                make(chan struct{}),
		logger:              logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	conversations := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case conv, ok := <-conversations:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			if err := w.processConversation(ctx, conv); err != nil {
				w.logger.Error(ctx, "error processing conversation", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.signalShutdown()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) signalShutdown() {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
}

// processConversation evaluates a single conversation, stores the resulting
// report and raises any alerts the report warrants.
func (w *InMemoryWorker) processConversation(ctx context.Context, conv Event) error {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordWorkerProcessingLatency(float64(latency))
	}()

	samples := make([]wellness.Sample, 0, len(conv.Samples))
	for _, s := range conv.Samples {
		samples = append(samples, wellness.Sample{Key: s.Key, Value: s.Value})
	}

	evalStart := time.Now()
	report := w.evaluator.Evaluate(samples)
	metrics.RecordEvaluationLatency(float64(time.Since(evalStart).Milliseconds()))

	record := repository.Record{
		ConversationID:  conv.ConversationID,
		PatientID:       conv.PatientID,
		StartedAt:       conv.StartedAt,
		DurationSeconds: conv.DurationSeconds,
		Summary:         conv.Summary,
		Score:           report.Score,
		Readings:        report.Readings,
	}

	if err := w.recorder.PutReport(ctx, record); err != nil {
		metrics.RecordStoreError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		metrics.RecordErrorByType("store_error", "high")
		w.logger.Error(ctx, "storing report failed",
			logger.String("conversationID", conv.ConversationID),
			logger.Error(err),
		)
		return fmt.Errorf("failed to store report for conversation %s: %w", conv.ConversationID, err)
	}

	w.raiseAlerts(ctx, conv, report)

	metrics.RecordConversationProcessed()
	if w.processed != nil {
		w.processed.Add(1)
	}
	return nil
}

// raiseAlerts derives warning and critical alerts from a freshly stored
// report. Alert failures are logged but never fail the conversation.
func (w *InMemoryWorker) raiseAlerts(ctx context.Context, conv Event, report wellness.Report) {
	now := time.Now().UTC()

	if bad := badMetricLabels(report); len(bad) > 0 {
		w.addAlert(ctx, model.Alert{
			AlertID:        uuid.NewString(),
			PatientID:      conv.PatientID,
			ConversationID: conv.ConversationID,
			Severity:       model.SeverityWarning,
			Reason:         "metrics outside healthy range: " + strings.Join(bad, ", "),
			CreatedAt:      now,
		})
	}

	var critical []string
	if report.Score < w.criticalScoreCutoff {
		critical = append(critical, fmt.Sprintf("composite score %d below cutoff %d", report.Score, w.criticalScoreCutoff))
	}
	if w.trendDeclining(ctx, conv.PatientID) {
		critical = append(critical, "composite score trend is declining")
	}
	if len(critical) > 0 {
		w.addAlert(ctx, model.Alert{
			AlertID:        uuid.NewString(),
			PatientID:      conv.PatientID,
			ConversationID: conv.ConversationID,
			Severity:       model.SeverityCritical,
			Reason:         strings.Join(critical, "; "),
			CreatedAt:      now,
		})
	}
}

func (w *InMemoryWorker) addAlert(ctx context.Context, a model.Alert) {
	if err := w.recorder.AddAlert(ctx, a); err != nil {
		metrics.RecordStoreError()
		metrics.RecordErrorByComponent("worker", "alert_error")
		w.logger.Error(ctx, "raising alert failed",
			logger.String("patientID", a.PatientID),
			logger.Error(err),
		)
		return
	}
	metrics.RecordAlertRaised(string(a.Severity))
	w.logger.Warn(ctx, "alert raised",
		logger.String("patientID", a.PatientID),
		logger.String("severity", string(a.Severity)),
		logger.String("reason", a.Reason),
	)
}

// trendDeclining reports whether the patient's score series over the trend
// window is declining. Errors degrade to "not declining".
func (w *InMemoryWorker) trendDeclining(ctx context.Context, patientID string) bool {
	since := time.Now().UTC().Add(-w.trendWindow)
	points, err := w.recorder.Scores(ctx, patientID, since)
	if err != nil {
		w.logger.Warn(ctx, "trend lookup failed",
			logger.String("patientID", patientID),
			logger.Error(err),
		)
		return false
	}

	scores := make([]float64, 0, len(points))
	for _, p := range points {
		scores = append(scores, float64(p.Score))
	}
	return wellness.Trend(scores) == wellness.TrendDeclining
}

func badMetricLabels(report wellness.Report) []string {
	var bad []string
	for _, r := range report.Readings {
		if r.Status == wellness.StatusBad {
			bad = append(bad, string(r.Key))
		}
	}
	return bad
}

// Pool manages multiple workers.
type Pool struct {
	workers   []*InMemoryWorker
	queue     Queue
	evaluator Evaluator
	recorder  Recorder

	// Shutdown control
	shutdown     chan struct{}
	shutdownOnce sync.Once

	// Metrics tracking
	processedCount    atomic.Int64
	lastProcessedTime time.Time

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool. Options are applied to every worker.
func NewPool(workerCount int, queue Queue, evaluator Evaluator, recorder Recorder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:           make([]*InMemoryWorker, workerCount),
		queue:             queue,
		evaluator:         evaluator,
		recorder:          recorder,
		shutdown:          make(chan struct{}),
		lastProcessedTime: time.Now(),
		logger:            logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{
			WithName("worker-" + strconv.Itoa(i)),
			withProcessedCounter(&pool.processedCount),
		}, opts...)
		pool.workers[i] = NewInMemoryWorker(queue, evaluator, recorder, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerIdleCount(0)
	metrics.UpdateWorkerMessagesPerSecond(0.0)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}

	go p.startMetricsUpdater(ctx)
}

// startMetricsUpdater starts a background goroutine that updates worker metrics.
func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics()
		}
	}
}

// updateMetrics publishes worker throughput since the last tick.
func (p *Pool) updateMetrics() {
	now := time.Now()
	timeDiff := now.Sub(p.lastProcessedTime).Seconds()
	if timeDiff > 0 {
		processed := p.processedCount.Swap(0)
		metrics.UpdateWorkerMessagesPerSecond(float64(processed) / timeDiff)
	}
	p.lastProcessedTime = now
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	p.shutdownOnce.Do(func() { close(p.shutdown) })

	for _, worker := range p.workers {
		worker.signalShutdown()
		select {
		case <-worker.done:
			// Worker finished
		case <-time.After(workerShutdownTimeout):
			// Worker timeout
		}
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// First close the queue to stop new conversations
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	p.shutdownOnce.Do(func() { close(p.shutdown) })

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		worker.signalShutdown()
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
