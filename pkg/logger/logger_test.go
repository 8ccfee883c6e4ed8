package logger_test

import (
	"context"
	"testing"

	logger "github.com/quadra2003/networking-lunches/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized logger", t, func() {
		So(logger.Init("text"), ShouldBeNil)
		l := logger.Get()

		Convey("When logging at every level", func() {
			ctx := context.Background()
			So(func() {
				l.Info(ctx, "info message", logger.String("k", "v"))
				l.Warn(ctx, "warn message", logger.Int("n", 1))
				l.Error(ctx, "error message", logger.Bool("flag", true))
				l.Debug(ctx, "debug message", logger.Any("any", 1.5))
			}, ShouldNotPanic)
		})

		Convey("When deriving a named logger", func() {
			named := l.Named("intake")

			Convey("Then it is usable independently", func() {
				So(named, ShouldNotBeNil)
				So(func() { named.Info(context.Background(), "hello") }, ShouldNotPanic)
			})
		})
	})

	Convey("Given the JSON format", t, func() {
		Convey("Then initialization succeeds", func() {
			So(logger.Init("json"), ShouldBeNil)
		})
	})

	Convey("Given an unknown format", t, func() {
		Convey("Then initialization fails", func() {
			So(logger.Init("xml"), ShouldNotBeNil)
		})
	})

	Convey("Given level strings", t, func() {
		Convey("Then known levels parse and unknown ones fail", func() {
			So(logger.SetLevelString("debug"), ShouldBeNil)
			So(logger.SetLevelString("warning"), ShouldBeNil)
			So(logger.SetLevelString(""), ShouldBeNil)
			So(logger.SetLevelString("loud"), ShouldNotBeNil)
		})
	})
}
