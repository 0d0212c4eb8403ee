package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fleetyard/fleetyard-backend/api/routes"
	"github.com/fleetyard/fleetyard-backend/internal/activity"
	"github.com/fleetyard/fleetyard-backend/internal/auth"
	"github.com/fleetyard/fleetyard-backend/internal/maintenance"
	"github.com/fleetyard/fleetyard-backend/internal/notifications"
	"github.com/fleetyard/fleetyard-backend/internal/orders"
	"github.com/fleetyard/fleetyard-backend/internal/parts"
	"github.com/fleetyard/fleetyard-backend/internal/seed"
	"github.com/fleetyard/fleetyard-backend/internal/users"
	"github.com/fleetyard/fleetyard-backend/internal/vehicles"
	"github.com/fleetyard/fleetyard-backend/pkg/config"
	"github.com/fleetyard/fleetyard-backend/pkg/db"
	"github.com/fleetyard/fleetyard-backend/pkg/logger"
	"github.com/fleetyard/fleetyard-backend/pkg/metrics"
	"github.com/fleetyard/fleetyard-backend/pkg/migrate"
	"github.com/fleetyard/fleetyard-backend/pkg/redis"
)

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
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	if cfg.FeatureFlags.Seed && cfg.App.IsDev() {
		if err := seed.Run(context.Background(), dbClient.DB(), cfg.Password, logg); err != nil {
			logg.Error(context.Background(), "failed to seed fixtures", err)
			os.Exit(1)
		}
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	svcs, err := buildServices(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, httpMetrics, metricsHandler, svcs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (routes.Services, error) {
	gdb := dbClient.DB()

	activityRepo := activity.NewRepository(gdb)
	usersRepo := users.NewRepository(gdb)
	vehiclesRepo := vehicles.NewRepository(gdb)
	partsRepo := parts.NewRepository(gdb)
	maintenanceRepo := maintenance.NewRepository(gdb)
	ordersRepo := orders.NewRepository(gdb)
	notificationsRepo := notifications.NewRepository(gdb)

	recorder, err := activity.NewRecorder(activityRepo, logg)
	if err != nil {
		return routes.Services{}, err
	}
	activitySvc, err := activity.NewService(activityRepo)
	if err != nil {
		return routes.Services{}, err
	}

	notificationsSvc, err := notifications.NewService(notificationsRepo)
	if err != nil {
		return routes.Services{}, err
	}
	notifier, err := notifications.NewNotifier(notificationsSvc, usersRepo, logg)
	if err != nil {
		return routes.Services{}, err
	}

	usersSvc, err := users.NewService(usersRepo, recorder, cfg.Password)
	if err != nil {
		return routes.Services{}, err
	}
	vehiclesSvc, err := vehicles.NewService(vehiclesRepo, recorder)
	if err != nil {
		return routes.Services{}, err
	}
	partsSvc, err := parts.NewService(partsRepo, recorder, notifier)
	if err != nil {
		return routes.Services{}, err
	}
	maintenanceSvc, err := maintenance.NewService(maintenanceRepo, recorder, notifier)
	if err != nil {
		return routes.Services{}, err
	}

	sequences, err := orders.NewRedisSequences(redisClient)
	if err != nil {
		return routes.Services{}, err
	}
	ordersSvc, err := orders.NewService(ordersRepo, sequences, partsRepo, recorder, notifier)
	if err != nil {
		return routes.Services{}, err
	}

	authSvc, err := auth.NewService(usersRepo, redisClient, recorder, cfg.JWT, cfg.AuthRateLimit)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:          authSvc,
		Users:         usersSvc,
		Vehicles:      vehiclesSvc,
		Parts:         partsSvc,
		Maintenance:   maintenanceSvc,
		Orders:        ordersSvc,
		Notifications: notificationsSvc,
		Activity:      activitySvc,
	}, nil
}
