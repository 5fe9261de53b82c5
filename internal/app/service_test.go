package service_test

import (
	"context"
	"testing"
	"time"

	service "github.com/halcyonlabs/carepulse/internal/app"
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

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(64),
			service.WithDedupeSize(128),
			service.WithShardCount(2),
			service.WithCriticalScoreCutoff(35),
			service.WithTrendWindow(7*24*time.Hour),
			service.WithBaselines(map[string]float64{"vocabulary_diversity": 0.7}),
		)

		Convey("Then it should be constructible", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given an unstarted service", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		svc := service.New(service.WithWorkerCount(1))

		Convey("When Start is called", func() {
			err := svc.Start(ctx)
			So(err, ShouldBeNil)

			Convey("Then a second Start is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And Stop shuts it down cleanly", func() {
				svc.Stop()
				svc.Stop() // idempotent
			})
		})
	})
}

func TestService_Dedupe(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		svc := service.New(service.WithWorkerCount(1))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a conversation id is recorded", func() {
			seen := svc.SeenAndRecord(ctx, "conv-1")

			Convey("Then the first sighting is new", func() {
				So(seen, ShouldBeFalse)
				So(svc.Size(), ShouldEqual, 1)
			})

			Convey("And the second sighting is a duplicate", func() {
				So(svc.SeenAndRecord(ctx, "conv-1"), ShouldBeTrue)
			})

			Convey("And Unrecord allows a retry", func() {
				svc.Unrecord(ctx, "conv-1")
				So(svc.SeenAndRecord(ctx, "conv-1"), ShouldBeFalse)
			})
		})
	})
}

func TestService_EndToEnd(t *testing.T) {
	Convey("Given a started service with one patient", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		svc := service.New(service.WithWorkerCount(2), service.WithQueueSize(32))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		So(svc.UpsertPatient(ctx, model.Patient{PatientID: "patient-1", Name: "Margaret H."}), ShouldBeNil)

		f := func(v float64) *float64 { return &v }
		conv := model.Conversation{
			ConversationID: "conv-1",
			PatientID:      "patient-1",
			StartedAt:      time.Now().UTC(),
			Samples: []model.MetricSample{
				{Key: wellness.VocabularyDiversity, Value: f(0.65)},
				{Key: wellness.TopicCoherence, Value: f(0.87)},
				{Key: wellness.RepetitionRate, Value: f(0.05)},
			},
		}

		Convey("When a conversation is enqueued and processed", func() {
			So(svc.Enqueue(ctx, conv), ShouldBeTrue)

			deadline := time.Now().Add(2 * time.Second)
			var processed bool
			for time.Now().Before(deadline) {
				if reports, err := svc.ConversationHistory(ctx, "patient-1", 24*time.Hour, 0); err == nil && len(reports) == 1 {
					processed = true
					break
				}
				time.Sleep(10 * time.Millisecond)
			}
			So(processed, ShouldBeTrue)

			Convey("Then the latest metrics carry the composite score", func() {
				report, err := svc.LatestMetrics(ctx, "patient-1")
				So(err, ShouldBeNil)
				So(report.Score, ShouldEqual, 80)
				So(len(report.Readings), ShouldEqual, 3)
			})

			Convey("And the trend over one conversation is stable", func() {
				trend, err := svc.Trend(ctx, "patient-1", 30*24*time.Hour, "30d")
				So(err, ShouldBeNil)
				So(trend.Direction, ShouldEqual, wellness.TrendStable)
				So(trend.Window, ShouldEqual, "30d")
				So(len(trend.Points), ShouldEqual, 1)
			})

			Convey("And a healthy conversation raises no alerts", func() {
				alerts, err := svc.Alerts(ctx, "patient-1", true)
				So(err, ShouldBeNil)
				So(alerts, ShouldBeEmpty)
			})

			Convey("And stats reflect the stored patient", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldBeTrue)
				So(stats["totalPatients"], ShouldEqual, 1)
			})
		})

		Convey("When a struggling conversation is processed", func() {
			poor := conv
			poor.ConversationID = "conv-2"
			poor.Samples = []model.MetricSample{
				{Key: wellness.VocabularyDiversity, Value: f(0.2)},
				{Key: wellness.TopicCoherence, Value: f(0.2)},
				{Key: wellness.RepetitionRate, Value: f(0.5)},
			}
			So(svc.Enqueue(ctx, poor), ShouldBeTrue)

			deadline := time.Now().Add(2 * time.Second)
			var alertCount int
			for time.Now().Before(deadline) {
				alerts, err := svc.Alerts(ctx, "patient-1", false)
				So(err, ShouldBeNil)
				if alertCount = len(alerts); alertCount >= 2 {
					break
				}
				time.Sleep(10 * time.Millisecond)
			}

			Convey("Then warning and critical alerts are raised", func() {
				So(alertCount, ShouldEqual, 2)
			})

			Convey("And acknowledging an alert hides it from the default view", func() {
				alerts, err := svc.Alerts(ctx, "patient-1", false)
				So(err, ShouldBeNil)
				So(alerts, ShouldNotBeEmpty)

				acked, err := svc.AckAlert(ctx, alerts[0].AlertID)
				So(err, ShouldBeNil)
				So(acked.Acknowledged, ShouldBeTrue)

				remaining, err := svc.Alerts(ctx, "patient-1", false)
				So(err, ShouldBeNil)
				So(len(remaining), ShouldEqual, len(alerts)-1)
			})
		})
	})
}

func TestService_Patients(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		svc := service.New(service.WithWorkerCount(1))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When patients are upserted", func() {
			So(svc.UpsertPatient(ctx, model.Patient{PatientID: "b", Name: "B"}), ShouldBeNil)
			So(svc.UpsertPatient(ctx, model.Patient{PatientID: "a", Name: "A"}), ShouldBeNil)

			Convey("Then they list in id order", func() {
				patients, err := svc.ListPatients(ctx)
				So(err, ShouldBeNil)
				So(len(patients), ShouldEqual, 2)
				So(patients[0].PatientID, ShouldEqual, "a")
			})

			Convey("And a single profile can be fetched", func() {
				p, err := svc.GetPatient(ctx, "a")
				So(err, ShouldBeNil)
				So(p.Name, ShouldEqual, "A")
				So(p.CreatedAt.IsZero(), ShouldBeFalse)
			})
		})
	})
}
