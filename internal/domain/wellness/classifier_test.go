package wellness_test

import (
	"math"
	"testing"

	"github.com/halcyonlabs/carepulse/internal/domain/wellness"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given the default definition table", t, func() {
		table, err := wellness.NewDefinitionTable(wellness.DefaultDefinitions())
		So(err, ShouldBeNil)

		Convey("When classifying a higher-is-better metric", func() {
			Convey("Then the good threshold itself classifies as good", func() {
				So(table.Classify(wellness.VocabularyDiversity, 0.6), ShouldEqual, wellness.StatusGood)
			})

			Convey("And values above stay good (monotonicity)", func() {
				So(table.Classify(wellness.VocabularyDiversity, 0.61), ShouldEqual, wellness.StatusGood)
				So(table.Classify(wellness.VocabularyDiversity, 0.99), ShouldEqual, wellness.StatusGood)
			})

			Convey("And values between warn and good classify as warn", func() {
				So(table.Classify(wellness.VocabularyDiversity, 0.4), ShouldEqual, wellness.StatusWarn)
				So(table.Classify(wellness.VocabularyDiversity, 0.59), ShouldEqual, wellness.StatusWarn)
			})

			Convey("And values below warn classify as bad", func() {
				So(table.Classify(wellness.VocabularyDiversity, 0.39), ShouldEqual, wellness.StatusBad)
				So(table.Classify(wellness.VocabularyDiversity, 0), ShouldEqual, wellness.StatusBad)
			})
		})

		Convey("When classifying a lower-is-better metric", func() {
			Convey("Then the good threshold itself classifies as good", func() {
				So(table.Classify(wellness.RepetitionRate, 0.1), ShouldEqual, wellness.StatusGood)
			})

			Convey("And values below stay good (monotonicity)", func() {
				So(table.Classify(wellness.RepetitionRate, 0.05), ShouldEqual, wellness.StatusGood)
				So(table.Classify(wellness.RepetitionRate, 0), ShouldEqual, wellness.StatusGood)
			})

			Convey("And values between good and warn classify as warn", func() {
				So(table.Classify(wellness.RepetitionRate, 0.15), ShouldEqual, wellness.StatusWarn)
				So(table.Classify(wellness.RepetitionRate, 0.2), ShouldEqual, wellness.StatusWarn)
			})

			Convey("And values above warn classify as bad", func() {
				So(table.Classify(wellness.RepetitionRate, 0.21), ShouldEqual, wellness.StatusBad)
				So(table.Classify(wellness.WordFindingPauses, 12), ShouldEqual, wellness.StatusBad)
			})
		})

		Convey("When classifying an unknown metric key", func() {
			Convey("Then any value classifies as neutral", func() {
				So(table.Classify("sentiment_valence", 0.5), ShouldEqual, wellness.StatusNeutral)
				So(table.Classify("", 1000), ShouldEqual, wellness.StatusNeutral)
			})
		})

		Convey("When classifying a non-finite value", func() {
			Convey("Then it classifies as neutral", func() {
				So(table.Classify(wellness.TopicCoherence, math.NaN()), ShouldEqual, wellness.StatusNeutral)
				So(table.Classify(wellness.TopicCoherence, math.Inf(1)), ShouldEqual, wellness.StatusNeutral)
			})
		})
	})
}
