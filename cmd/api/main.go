package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/organictrace/organictrace-backend/api/routes"
	"github.com/organictrace/organictrace-backend/internal/certifications"
	"github.com/organictrace/organictrace-backend/internal/identity"
	"github.com/organictrace/organictrace-backend/internal/products"
	"github.com/organictrace/organictrace-backend/internal/trace"
	"github.com/organictrace/organictrace-backend/pkg/chain"
	"github.com/organictrace/organictrace-backend/pkg/config"
	"github.com/organictrace/organictrace-backend/pkg/db"
	"github.com/organictrace/organictrace-backend/pkg/env"
	"github.com/organictrace/organictrace-backend/pkg/logger"
	"github.com/organictrace/organictrace-backend/pkg/metrics"
	"github.com/organictrace/organictrace-backend/pkg/migrate"
	pkgredis "github.com/organictrace/organictrace-backend/pkg/redis"
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

	redisClient, err := pkgredis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	chainMetrics := metrics.NewChainMetrics(prometheus.DefaultRegisterer)
	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	chainClient, err := chain.Dial(context.Background(), cfg.Chain, chainMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to dial chain rpc", err)
		os.Exit(1)
	}

	registry, err := chain.NewRegistry(chainClient, cfg.Chain.RegistryAddress)
	if err != nil {
		logg.Error(context.Background(), "failed to bind certification registry", err)
		os.Exit(1)
	}
	tracker, err := chain.NewTracker(chainClient, cfg.Chain.TrackerAddress)
	if err != nil {
		logg.Error(context.Background(), "failed to bind product tracker", err)
		os.Exit(1)
	}

	profileRepo := identity.NewRepository(dbClient.DB())
	identityService, err := identity.NewService(profileRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity service", err)
		os.Exit(1)
	}

	certificationService, err := certifications.NewService(
		certifications.NewRequestRepository(dbClient.DB()),
		certifications.NewCertificationRepository(dbClient.DB()),
		identityService,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create certification service", err)
		os.Exit(1)
	}

	productRepo := products.NewRepository(dbClient.DB())
	productService, err := products.NewService(productRepo, identityService)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	traceService, err := trace.NewService(tracker, registry, productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create trace service", err)
		os.Exit(1)
	}

	// Platform-injected PORT wins over configured port.
	addr := ":" + env.Get("PORT", cfg.App.Port)

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
			Metrics:        httpMetrics,
			Identity:       identityService,
			Certifications: certificationService,
			Products:       productService,
			Trace:          traceService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
