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
	"go.uber.org/multierr"

	"github.com/phantomlabs/phantom-backend/api/routes"
	"github.com/phantomlabs/phantom-backend/internal/auth"
	"github.com/phantomlabs/phantom-backend/internal/engine"
	"github.com/phantomlabs/phantom-backend/internal/monitors"
	"github.com/phantomlabs/phantom-backend/internal/notify"
	"github.com/phantomlabs/phantom-backend/internal/products"
	"github.com/phantomlabs/phantom-backend/internal/proxies"
	"github.com/phantomlabs/phantom-backend/internal/settings"
	"github.com/phantomlabs/phantom-backend/internal/webhooks"
	"github.com/phantomlabs/phantom-backend/pkg/config"
	"github.com/phantomlabs/phantom-backend/pkg/db"
	"github.com/phantomlabs/phantom-backend/pkg/enums"
	"github.com/phantomlabs/phantom-backend/pkg/logger"
	"github.com/phantomlabs/phantom-backend/pkg/metrics"
	"github.com/phantomlabs/phantom-backend/pkg/migrate"
	"github.com/phantomlabs/phantom-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	proxiesService, err := proxies.NewService(proxies.NewRepository(dbClient.DB()), nil)
	if err != nil {
		logg.Error(context.Background(), "failed to create proxies service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
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

	eng, err := engine.New(engine.Params{
		Logger:   logg,
		Emitter:  emitter,
		Monitors: manager,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create engine", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config:    cfg,
		Logger:    logg,
		DB:        dbClient,
		Redis:     redisClient,
		Auth:      authService,
		Engine:    eng,
		Monitors:  manager,
		Products:  productsService,
		Settings:  settingsService,
		Proxies:   proxiesService,
		Hub:       hub,
		Scheduler: scheduler,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx := logg.WithFields(runCtx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	if eng.State() == enums.EngineStateRunning {
		closeErr = multierr.Append(closeErr, eng.Stop(shutdownCtx))
	}
	scheduler.Close()
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())

	if closeErr != nil {
		logg.Error(ctx, "shutdown finished with errors", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "api server shut down gracefully")
}
