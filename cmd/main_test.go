package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/pakafest/dashboard/internal/adapters/http/api"
	service "github.com/pakafest/dashboard/internal/app"
	"github.com/pakafest/dashboard/internal/config"
	"github.com/pakafest/dashboard/pkg/logger"
)

func TestMainWiring(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		if err := logger.Init(); err != nil {
			t.Fatalf("failed to initialize logger: %v", err)
		}

		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("FESTI_ADDR", ":8081")
			_ = os.Setenv("FESTI_TOP_DEPARTMENTS", "5")
			defer func() {
				_ = os.Unsetenv("FESTI_ADDR")
				_ = os.Unsetenv("FESTI_TOP_DEPARTMENTS")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")
				convey.So(cfg.TopDepartments, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then the service should be creatable with default options", func() {
				svc := service.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And with custom options", func() {
				svc := service.New(
					service.WithTopDepartments(5),
					service.WithRefreshInterval(time.Minute),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP route registration", func() {
			svc := service.New(service.WithRefreshInterval(0))
			ctx := context.Background()
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			mux := http.NewServeMux()
			apiServer := api.NewServer(svc, api.Credentials{}, nil)

			convey.Convey("Then routes should register without panicking", func() {
				convey.So(func() { apiServer.Register(ctx, mux) }, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing the system metrics updater", func() {
			ctx, cancel := context.WithCancel(context.Background())

			convey.Convey("Then it should run and stop with the context", func() {
				done := make(chan struct{})
				go func() {
					startSystemMetricsUpdater(ctx)
					close(done)
				}()
				cancel()

				select {
				case <-done:
				case <-time.After(time.Second):
					t.Error("system metrics updater did not stop")
				}
			})
		})
	})
}
