package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pakafest/dashboard/internal/adapters/geo"
	"github.com/pakafest/dashboard/internal/adapters/http/api"
	"github.com/pakafest/dashboard/internal/adapters/repository"
	"github.com/pakafest/dashboard/internal/adapters/ticketing"
	service "github.com/pakafest/dashboard/internal/app"
	"github.com/pakafest/dashboard/internal/config"
	"github.com/pakafest/dashboard/internal/domain/derive"
	"github.com/pakafest/dashboard/pkg/logger"
	"github.com/pakafest/dashboard/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 3 * time.Minute // manual refresh runs synchronously
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Local development keeps provider credentials in a .env file.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to flush logs: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := repository.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Error(ctx, "failed to open snapshot store", logger.Error(err))
		return
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn(ctx, "closing snapshot store", logger.Error(err))
		}
	}()

	extractor := derive.NewExtractor(
		derive.WithBirthDateLabels(cfg.BirthDateLabels),
		derive.WithPostalCodeLabels(cfg.PostalCodeLabels),
	)

	opts := []service.Option{
		service.WithLogger(log),
		service.WithStore(store),
		service.WithExtractor(extractor),
		service.WithRanges(cfg.AgeRanges),
		service.WithTopDepartments(cfg.TopDepartments),
		service.WithRefreshInterval(time.Duration(cfg.RefreshIntervalMinutes) * time.Minute),
		service.WithLocator(geo.NewClient(
			geo.WithBaseURL(cfg.GeoBaseURL),
			geo.WithBatchSize(cfg.GeoBatchSize),
			geo.WithBatchPause(time.Duration(cfg.GeoBatchPauseMS)*time.Millisecond),
		)),
	}
	if cfg.TicketingConfigured() {
		opts = append(opts, service.WithFetcher(ticketing.NewClient(
			cfg.TicketingAPIKey,
			cfg.TicketingUsername,
			cfg.TicketingPassword,
			cfg.TicketingEventID,
			ticketing.WithBaseURL(cfg.TicketingBaseURL),
		)))
	} else {
		log.Warn(ctx, "ticketing credentials not configured; serving stored snapshots only")
	}

	svc := service.New(opts...)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	var tokens *api.TokenManager
	if cfg.AuthConfigured() {
		tokens = api.NewTokenManager(cfg.AuthJWTSecret, time.Duration(cfg.AuthTokenTTLHours)*time.Hour)
	} else {
		log.Warn(ctx, "auth_jwt_secret not set; API served without authentication")
	}
	apiServer := api.NewServer(svc, api.Credentials{
		Username: cfg.AuthUsername,
		Password: cfg.AuthPassword,
	}, tokens)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater starts a background goroutine that updates
// system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}
