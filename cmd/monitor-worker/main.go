package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/phantomlabs/phantom-backend/internal/monitors"
	"github.com/phantomlabs/phantom-backend/internal/notify"
	"github.com/phantomlabs/phantom-backend/internal/products"
	"github.com/phantomlabs/phantom-backend/internal/settings"
	"github.com/phantomlabs/phantom-backend/internal/webhooks"
	"github.com/phantomlabs/phantom-backend/pkg/config"
	"github.com/phantomlabs/phantom-backend/pkg/db"
	"github.com/phantomlabs/phantom-backend/pkg/logger"
	"github.com/phantomlabs/phantom-backend/pkg/metrics"
	"github.com/phantomlabs/phantom-backend/pkg/migrate"
	"github.com/phantomlabs/phantom-backend/pkg/redis"
)

// The worker runs the monitor fleet headless. The only HTTP surface it
// exposes is /metrics; operators drive configuration through the api binary.
func main() {
	logg := logger.New(logger.Options{ServiceName: "monitor-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "monitor-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	monitorMetrics := metrics.NewMonitorMetrics(prometheus.DefaultRegisterer)
	notificationMetrics := metrics.NewNotificationMetrics(prometheus.DefaultRegisterer)

	hub := notify.NewHub(notificationMetrics)
	scheduler := notify.NewScheduler(hub, notificationMetrics)
	emitter := notify.NewEmitter(hub)

	settingsService, err := settings.NewService(settings.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	productsService, err := products.NewService(products.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	manager, err := monitors.NewManager(monitors.ManagerParams{
		Config:   cfg.Monitor,
		Logger:   logg,
		Metrics:  monitorMetrics,
		Products: productsService,
		Settings: settingsService,
		Emitter:  emitter,
		Webhook:  webhooks.NewClient(cfg.Webhook),
		Seen:     redisClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create monitor manager", err)
		os.Exit(1)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx := logg.WithFields(runCtx, map[string]any{"env": cfg.App.Env})

	seeded, err := productsService.SeedBuiltin(runCtx)
	if err != nil {
		logg.Error(ctx, "failed to seed builtin catalog", err)
		os.Exit(1)
	}
	if seeded > 0 {
		logg.Info(logg.WithField(ctx, "seeded", seeded), "builtin catalog seeded")
	}

	if err := manager.SetupShopify(nil, nil, true); err != nil {
		logg.Error(ctx, "failed to set up shopify monitors", err)
		os.Exit(1)
	}
	if err := manager.SetupFootsites(runCtx, nil, nil, nil); err != nil {
		logg.Error(ctx, "failed to set up footsite monitors", err)
		os.Exit(1)
	}

	if err := manager.Start(runCtx); err != nil {
		logg.Error(ctx, "failed to start monitors", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()

	logg.Info(logg.WithField(ctx, "addr", addr), "monitor worker running")
	<-runCtx.Done()
	logg.Info(ctx, "shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	if manager.Running() {
		closeErr = multierr.Append(closeErr, manager.Stop(shutdownCtx))
	}
	scheduler.Close()
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())

	if closeErr != nil {
		logg.Error(ctx, "shutdown finished with errors", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "monitor worker shut down gracefully")
}
