package main

import (
	"os"
	"testing"

	"github.com/okian/encore/internal/adapters/http/api"
	app "github.com/okian/encore/internal/app"
	"github.com/okian/encore/internal/config"
	"github.com/okian/encore/pkg/logger"
	"github.com/okian/encore/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("ENCORE_ADDR", ":8080")
			_ = os.Setenv("ENCORE_POLL_INTERVAL_MS", "500")
			_ = os.Setenv("ENCORE_ROOM_CODE_DIGITS", "5")
			defer func() {
				_ = os.Unsetenv("ENCORE_ADDR")
				_ = os.Unsetenv("ENCORE_POLL_INTERVAL_MS")
				_ = os.Unsetenv("ENCORE_ROOM_CODE_DIGITS")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(t.Context())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.PollIntervalMS, convey.ShouldEqual, 500)
				convey.So(cfg.RoomCodeDigits, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithRoomCodeDigits(6),
					app.WithCreateAttempts(32),
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

		convey.Convey("When testing metrics wiring", func() {
			convey.Convey("Then the private registry should be available", func() {
				convey.So(metrics.GetRegistry(), convey.ShouldNotBeNil)
			})

			convey.Convey("And system metrics updates should not panic", func() {
				convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			})
		})
	})
}
