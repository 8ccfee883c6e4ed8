package config_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/quadra2003/networking-lunches/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.StoreBackend, convey.ShouldEqual, "memory")
			convey.So(cfg.MongoDatabase, convey.ShouldEqual, "lunches")
			convey.So(cfg.NotifyQueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.NotifyWorkers, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 100_000)
		})
	})
}
