package wellness_test

import (
	"testing"

	"github.com/halcyonlabs/carepulse/internal/domain/wellness"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTrend(t *testing.T) {
	Convey("Given the trend analyzer", t, func() {
		Convey("When the series is too short", func() {
			Convey("Then empty and single-sample series are stable", func() {
				So(wellness.Trend(nil), ShouldEqual, wellness.TrendStable)
				So(wellness.Trend([]float64{}), ShouldEqual, wellness.TrendStable)
				So(wellness.Trend([]float64{5}), ShouldEqual, wellness.TrendStable)
			})
		})

		Convey("When the second half averages higher than the first", func() {
			direction := wellness.Trend([]float64{50, 50, 50, 80, 80, 80})

			Convey("Then the trend is improving", func() {
				So(direction, ShouldEqual, wellness.TrendImproving)
			})
		})

		Convey("When the second half averages lower than the first", func() {
			direction := wellness.Trend([]float64{80, 80, 80, 50, 50, 50})

			Convey("Then the trend is declining", func() {
				So(direction, ShouldEqual, wellness.TrendDeclining)
			})
		})

		Convey("When the movement stays inside the delta threshold", func() {
			Convey("Then the trend is stable", func() {
				So(wellness.Trend([]float64{70, 70, 72, 72}), ShouldEqual, wellness.TrendStable)
				So(wellness.Trend([]float64{70, 73}), ShouldEqual, wellness.TrendStable)
			})

			Convey("And a delta of exactly the threshold is still stable", func() {
				So(wellness.Trend([]float64{70, 73}), ShouldEqual, wellness.TrendStable)
				So(wellness.Trend([]float64{73, 70}), ShouldEqual, wellness.TrendStable)
			})
		})

		Convey("When the series length is odd", func() {
			// mid = 2: first half [60 60], second half [60 70 70]
			direction := wellness.Trend([]float64{60, 60, 60, 70, 70})

			Convey("Then the midpoint split uses floor division", func() {
				So(direction, ShouldEqual, wellness.TrendImproving)
			})
		})

		Convey("When asking for the underlying half averages", func() {
			first, second := wellness.TrendHalves([]float64{50, 50, 80, 80})

			Convey("Then both halves are reported", func() {
				So(first, ShouldEqual, 50)
				So(second, ShouldEqual, 80)
			})
		})
	})
}
