package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/halcyonlabs/carepulse/internal/adapters/mq/worker"
	"github.com/halcyonlabs/carepulse/internal/adapters/repository"
	"github.com/halcyonlabs/carepulse/internal/domain/model"
	"github.com/halcyonlabs/carepulse/internal/domain/wellness"
	"github.com/halcyonlabs/carepulse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// chanQueue feeds workers from a plain channel.
type chanQueue struct {
	ch chan worker.Event
}

func newChanQueue(size int) *chanQueue {
	return &chanQueue{ch: make(chan worker.Event, size)}
}

func (q *chanQueue) Dequeue(_ context.Context) <-chan worker.Event {
	return q.ch
}

// memRecorder captures everything the worker writes.
type memRecorder struct {
	mu      sync.Mutex
	reports []repository.Record
	alerts  []model.Alert
	scores  []repository.ScorePoint
	putErr  error
}

func (r *memRecorder) PutReport(_ context.Context, rec repository.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.putErr != nil {
		return r.putErr
	}
	r.reports = append(r.reports, rec)
	return nil
}

func (r *memRecorder) Scores(_ context.Context, _ string, _ time.Time) ([]repository.ScorePoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scores, nil
}

func (r *memRecorder) AddAlert(_ context.Context, a model.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
	return nil
}

func (r *memRecorder) snapshot() ([]repository.Record, []model.Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reports := append([]repository.Record(nil), r.reports...)
	alerts := append([]model.Alert(nil), r.alerts...)
	return reports, alerts
}

func newEvaluator(t *testing.T) *wellness.Evaluator {
	t.Helper()
	table, err := wellness.NewDefinitionTable(wellness.DefaultDefinitions())
	if err != nil {
		t.Fatalf("building definition table: %v", err)
	}
	return wellness.NewEvaluator(table)
}

func f(v float64) *float64 { return &v }

func conversation(id string, vocab, coherence, repetition *float64) worker.Event {
	return worker.Event{
		ConversationID: id,
		PatientID:      "patient-1",
		StartedAt:      time.Now().UTC(),
		Samples: []model.MetricSample{
			{Key: wellness.VocabularyDiversity, Value: vocab},
			{Key: wellness.TopicCoherence, Value: coherence},
			{Key: wellness.RepetitionRate, Value: repetition},
		},
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWorkerProcessing(t *testing.T) {
	Convey("Given a running worker", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		queue := newChanQueue(8)
		recorder := &memRecorder{}
		w := worker.NewInMemoryWorker(queue, newEvaluator(t), recorder)
		go w.Run(ctx)

		Convey("When a healthy conversation arrives", func() {
			queue.ch <- conversation("c1", f(0.72), f(0.85), f(0.05))

			waitFor(t, func() bool {
				reports, _ := recorder.snapshot()
				return len(reports) == 1
			})
			reports, alerts := recorder.snapshot()

			Convey("Then a report is stored and no alert is raised", func() {
				So(reports[0].ConversationID, ShouldEqual, "c1")
				So(reports[0].Score, ShouldBeGreaterThan, 60)
				So(len(reports[0].Readings), ShouldEqual, 3)
				So(alerts, ShouldBeEmpty)
			})
		})

		Convey("When a conversation has a metric in the bad range", func() {
			queue.ch <- conversation("c2", f(0.72), f(0.85), f(0.35))

			waitFor(t, func() bool {
				_, alerts := recorder.snapshot()
				return len(alerts) == 1
			})
			_, alerts := recorder.snapshot()

			Convey("Then a warning alert names the metric", func() {
				So(alerts[0].Severity, ShouldEqual, model.SeverityWarning)
				So(alerts[0].Reason, ShouldContainSubstring, "repetition_rate")
				So(alerts[0].ConversationID, ShouldEqual, "c2")
				So(alerts[0].AlertID, ShouldNotBeEmpty)
			})
		})

		Convey("When the composite score falls below the critical cutoff", func() {
			queue.ch <- conversation("c3", f(0.1), f(0.1), f(0.6))

			waitFor(t, func() bool {
				_, alerts := recorder.snapshot()
				return len(alerts) >= 2
			})
			_, alerts := recorder.snapshot()

			Convey("Then both a warning and a critical alert are raised", func() {
				severities := map[model.AlertSeverity]bool{}
				for _, a := range alerts {
					severities[a.Severity] = true
				}
				So(severities[model.SeverityWarning], ShouldBeTrue)
				So(severities[model.SeverityCritical], ShouldBeTrue)
			})
		})
	})
}

func TestWorkerTrendAlert(t *testing.T) {
	Convey("Given a patient with a declining score history", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		base := time.Now().UTC().Add(-6 * 24 * time.Hour)
		recorder := &memRecorder{}
		for i, score := range []int{85, 84, 83, 60, 58, 55} {
			recorder.scores = append(recorder.scores, repository.ScorePoint{
				ConversationID: "old",
				Score:          score,
				StartedAt:      base.Add(time.Duration(i) * 24 * time.Hour),
			})
		}

		queue := newChanQueue(1)
		w := worker.NewInMemoryWorker(queue, newEvaluator(t), recorder)
		go w.Run(ctx)

		Convey("When an otherwise healthy conversation is processed", func() {
			queue.ch <- conversation("c1", f(0.72), f(0.85), f(0.05))

			waitFor(t, func() bool {
				_, alerts := recorder.snapshot()
				return len(alerts) == 1
			})
			_, alerts := recorder.snapshot()

			Convey("Then a critical alert reports the declining trend", func() {
				So(alerts[0].Severity, ShouldEqual, model.SeverityCritical)
				So(alerts[0].Reason, ShouldContainSubstring, "declining")
			})
		})
	})
}

func TestWorkerShutdown(t *testing.T) {
	Convey("Given a running worker", t, func() {
		ctx := context.Background()
		queue := newChanQueue(1)
		recorder := &memRecorder{}
		w := worker.NewInMemoryWorker(queue, newEvaluator(t), recorder)
		go w.Run(ctx)

		Convey("When Shutdown is called", func() {
			shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			err := w.Shutdown(shutdownCtx)

			Convey("Then it returns without error", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of workers", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		queue := newChanQueue(64)
		recorder := &memRecorder{}
		pool := worker.NewPool(4, queue, newEvaluator(t), recorder, worker.WithCriticalScoreCutoff(40))
		pool.Start(ctx)

		Convey("When many conversations are enqueued", func() {
			for i := 0; i < 20; i++ {
				queue.ch <- conversation("c", f(0.72), f(0.85), f(0.05))
			}

			waitFor(t, func() bool {
				reports, _ := recorder.snapshot()
				return len(reports) == 20
			})

			Convey("Then every conversation gets a report", func() {
				reports, _ := recorder.snapshot()
				So(len(reports), ShouldEqual, 20)
			})

			Convey("And the pool stops cleanly", func() {
				pool.Stop()
			})
		})
	})
}
