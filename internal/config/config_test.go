package config_test

import (
	"context"
	"testing"

	"github.com/halcyonlabs/carepulse/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigNew(t *testing.T) {
	convey.Convey("Given a new default config", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should carry sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.ShardCount, convey.ShouldEqual, 8)
			convey.So(cfg.MaxReportsPerPatient, convey.ShouldEqual, 500)
			convey.So(cfg.Baselines, convey.ShouldBeNil)
		})
	})
}
