package wellness_test

import (
	"testing"

	"github.com/halcyonlabs/carepulse/internal/domain/wellness"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEvaluator(t *testing.T) {
	Convey("Given an evaluator over the default table", t, func() {
		table, err := wellness.NewDefinitionTable(wellness.DefaultDefinitions())
		So(err, ShouldBeNil)
		evaluator := wellness.NewEvaluator(table)

		Convey("When evaluating a full set of samples", func() {
			report := evaluator.Evaluate([]wellness.Sample{
				{Key: wellness.VocabularyDiversity, Value: f(0.65)},
				{Key: wellness.TopicCoherence, Value: f(0.87)},
				{Key: wellness.RepetitionRate, Value: f(0.05)},
				{Key: wellness.WordFindingPauses, Value: f(3)},
			})

			Convey("Then the composite score matches the weighted formula", func() {
				So(report.Score, ShouldEqual, 80)
			})

			Convey("And every sample yields a reading", func() {
				So(len(report.Readings), ShouldEqual, 4)
			})

			Convey("And statuses follow the thresholds", func() {
				So(report.Readings[0].Status, ShouldEqual, wellness.StatusGood)
				So(report.Readings[1].Status, ShouldEqual, wellness.StatusGood)
				So(report.Readings[2].Status, ShouldEqual, wellness.StatusGood)
			})

			Convey("And deviations carry a baseline comparison", func() {
				So(report.Readings[0].DeviationPct, ShouldNotBeNil)
				So(*report.Readings[0].DeviationPct, ShouldAlmostEqual, 3.17, 0.01)
				So(report.Readings[0].Comparison, ShouldEqual, wellness.BaselineBetter)
				So(report.Readings[3].Comparison, ShouldEqual, wellness.BaselineInLine)
			})
		})

		Convey("When a sample has no value", func() {
			report := evaluator.Evaluate([]wellness.Sample{
				{Key: wellness.VocabularyDiversity, Value: nil},
				{Key: wellness.TopicCoherence, Value: f(0.5)},
				{Key: wellness.RepetitionRate, Value: f(0)},
			})

			Convey("Then it classifies as neutral without deviation data", func() {
				So(report.Readings[0].Status, ShouldEqual, wellness.StatusNeutral)
				So(report.Readings[0].DeviationPct, ShouldBeNil)
			})

			Convey("And the composite treats the missing value as zero", func() {
				So(report.Score, ShouldEqual, 40)
			})
		})

		Convey("When a sample uses an unknown key", func() {
			report := evaluator.Evaluate([]wellness.Sample{
				{Key: "sentiment_valence", Value: f(0.9)},
			})

			Convey("Then the reading is neutral and evaluation succeeds", func() {
				So(report.Readings[0].Status, ShouldEqual, wellness.StatusNeutral)
				So(report.Readings[0].DeviationPct, ShouldBeNil)
			})
		})

		Convey("When no samples are supplied", func() {
			report := evaluator.Evaluate(nil)

			Convey("Then the report carries the all-missing composite", func() {
				So(report.Score, ShouldEqual, 20)
				So(report.Readings, ShouldBeEmpty)
			})
		})
	})
}
