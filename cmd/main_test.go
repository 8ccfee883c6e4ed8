package main

import (
	"context"
	"os"
	"testing"

	"github.com/quadra2003/networking-lunches/internal/adapters/http/api"
	app "github.com/quadra2003/networking-lunches/internal/app"
	"github.com/quadra2003/networking-lunches/internal/config"
	"github.com/quadra2003/networking-lunches/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("LUNCHES_ADDR", ":8080")
			_ = os.Setenv("LUNCHES_NOTIFY_QUEUE_SIZE", "1000")
			_ = os.Setenv("LUNCHES_NOTIFY_WORKERS", "4")
			defer func() {
				_ = os.Unsetenv("LUNCHES_ADDR")
				_ = os.Unsetenv("LUNCHES_NOTIFY_QUEUE_SIZE")
				_ = os.Unsetenv("LUNCHES_NOTIFY_WORKERS")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.NotifyQueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.NotifyWorkers, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing store selection", func() {
			ctx := context.Background()

			convey.Convey("Then the memory backend should open", func() {
				cfg := config.New(ctx)
				store, err := newStore(ctx, cfg)
				convey.So(err, convey.ShouldBeNil)
				convey.So(store, convey.ShouldNotBeNil)
				convey.So(store.Close(ctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithWorkerCount(8),
					app.WithQueueSize(2000),
					app.WithDedupeSize(1000),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then HTTP server should be creatable", func() {
				server := api.NewServer(svc, svc)
				convey.So(server, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				manager := metrics.NewManager()
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}
