package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mateovidal/dropcart-backend/internal/cron"
	"github.com/mateovidal/dropcart-backend/internal/orders"
	"github.com/mateovidal/dropcart-backend/internal/supplierorders"
	"github.com/mateovidal/dropcart-backend/internal/suppliers"
	"github.com/mateovidal/dropcart-backend/pkg/config"
	"github.com/mateovidal/dropcart-backend/pkg/db"
	"github.com/mateovidal/dropcart-backend/pkg/logger"
	"github.com/mateovidal/dropcart-backend/pkg/metrics"
	"github.com/mateovidal/dropcart-backend/pkg/migrate"
	"github.com/mateovidal/dropcart-backend/pkg/redis"
)

const lockKeyFormat = "dc:tracking-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "tracking-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "tracking-worker"

	logg = logger.New(logger.Options{
		ServiceName: "tracking-worker",
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := suppliers.NewRegistry(suppliers.RESTOptions{Timeout: cfg.Supplier.RequestTimeout})
	trackerSvc, err := supplierorders.NewService(
		supplierorders.NewRepository(dbClient.DB()),
		suppliers.NewRepository(dbClient.DB()),
		orders.NewRepository(dbClient.DB()),
		registry,
		dbClient,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create supplier order service", err)
		os.Exit(1)
	}

	sweepJob, err := cron.NewTrackingSweepJob(cron.TrackingSweepJobParams{
		Logger:  logg,
		Tracker: trackerSvc,
		Batch:   cfg.Worker.SweepBatch,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create tracking sweep job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create worker lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(sweepJob),
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Worker.SweepInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create worker service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})

	go serveMetrics(ctx, logg, cfg.Worker.MetricsPort)

	logg.Info(ctx, "starting tracking worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "tracking worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "tracking worker shutting down gracefully")
}

func serveMetrics(ctx context.Context, logg *logger.Logger, port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: ":" + port, Handler: mux}

	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "metrics server stopped unexpectedly", err)
	}
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
