package config_test

import (
	"testing"

	"github.com/okian/neuropulse/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.UserID, convey.ShouldEqual, "default_user")
			convey.So(cfg.DBPath, convey.ShouldEqual, "")
			convey.So(cfg.SourceCapacity, convey.ShouldEqual, 100_000)
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.StoreCapacity, convey.ShouldEqual, 10_000)
			convey.So(cfg.CacheCapacity, convey.ShouldEqual, 100)
			convey.So(cfg.MonitorBaseSeconds, convey.ShouldEqual, 30)
			convey.So(cfg.MonitorMaxSeconds, convey.ShouldEqual, 300)
			convey.So(cfg.InstantSeconds, convey.ShouldEqual, 5)
			convey.So(cfg.RetryAttempts, convey.ShouldEqual, 3)
			convey.So(cfg.MaxSessionsLimit, convey.ShouldEqual, 1000)
		})
	})
}
