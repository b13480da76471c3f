package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/mateovidal/dropcart-backend/api/routes"
	"github.com/mateovidal/dropcart-backend/internal/catalog"
	"github.com/mateovidal/dropcart-backend/internal/fulfillment"
	"github.com/mateovidal/dropcart-backend/internal/orders"
	"github.com/mateovidal/dropcart-backend/internal/products"
	"github.com/mateovidal/dropcart-backend/internal/supplierorders"
	"github.com/mateovidal/dropcart-backend/internal/suppliers"
	"github.com/mateovidal/dropcart-backend/internal/wallet"
	"github.com/mateovidal/dropcart-backend/pkg/config"
	"github.com/mateovidal/dropcart-backend/pkg/db"
	"github.com/mateovidal/dropcart-backend/pkg/logger"
	"github.com/mateovidal/dropcart-backend/pkg/migrate"
	"github.com/mateovidal/dropcart-backend/pkg/redis"
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

	walletSvc, err := wallet.NewService(wallet.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	registry := suppliers.NewRegistry(suppliers.RESTOptions{Timeout: cfg.Supplier.RequestTimeout})
	suppliersRepo := suppliers.NewRepository(dbClient.DB())
	suppliersSvc, err := suppliers.NewService(suppliersRepo, registry)
	if err != nil {
		logg.Error(context.Background(), "failed to create suppliers service", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	productsRepo := products.NewRepository(dbClient.DB())

	trackerSvc, err := supplierorders.NewService(
		supplierorders.NewRepository(dbClient.DB()),
		suppliersRepo,
		ordersRepo,
		registry,
		dbClient,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create supplier order service", err)
		os.Exit(1)
	}

	fulfillmentSvc, err := fulfillment.NewService(walletSvc, trackerSvc, ordersRepo, productsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment service", err)
		os.Exit(1)
	}

	catalogSvc, err := catalog.NewService(suppliersSvc, productsRepo, registry, cfg.Supplier.FetchPageSize, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

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
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			Wallet:         walletSvc,
			Fulfillment:    fulfillmentSvc,
			Orders:         ordersRepo,
			Suppliers:      suppliersSvc,
			SupplierOrders: trackerSvc,
			Catalog:        catalogSvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
