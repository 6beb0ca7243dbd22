package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/clickbrilhe/storefront-backend/api/routes"
	cartsvc "github.com/clickbrilhe/storefront-backend/internal/cart"
	"github.com/clickbrilhe/storefront-backend/internal/catalog"
	checkoutsvc "github.com/clickbrilhe/storefront-backend/internal/checkout"
	"github.com/clickbrilhe/storefront-backend/internal/identity"
	ordersvc "github.com/clickbrilhe/storefront-backend/internal/orders"
	"github.com/clickbrilhe/storefront-backend/internal/shipping"
	"github.com/clickbrilhe/storefront-backend/pkg/backend"
	"github.com/clickbrilhe/storefront-backend/pkg/config"
	"github.com/clickbrilhe/storefront-backend/pkg/db"
	"github.com/clickbrilhe/storefront-backend/pkg/logger"
	"github.com/clickbrilhe/storefront-backend/pkg/metrics"
	"github.com/clickbrilhe/storefront-backend/pkg/migrate"
	"github.com/clickbrilhe/storefront-backend/pkg/pagarme"
	"github.com/clickbrilhe/storefront-backend/pkg/receita"
	"github.com/clickbrilhe/storefront-backend/pkg/redis"
	"github.com/clickbrilhe/storefront-backend/pkg/viacep"
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

	backendClient, err := backend.NewClient(cfg.Backend.BaseURL,
		backend.WithHTTPClient(&http.Client{Timeout: cfg.Backend.Timeout}))
	if err != nil {
		logg.Error(context.Background(), "failed to build backend client", err)
		os.Exit(1)
	}
	viacepClient := viacep.NewClient(
		viacep.WithBaseURL(cfg.ViaCEP.BaseURL),
		viacep.WithHTTPClient(&http.Client{Timeout: cfg.ViaCEP.Timeout}))
	pagarmeClient := pagarme.NewClient(
		pagarme.WithBaseURL(cfg.Pagarme.BaseURL),
		pagarme.WithHTTPClient(&http.Client{Timeout: cfg.Pagarme.Timeout}))

	var resolver receita.Resolver = receita.NewStubResolver()
	if cfg.Receita.BaseURL != "" {
		live, err := receita.NewClient(cfg.Receita.BaseURL,
			receita.WithHTTPClient(&http.Client{Timeout: cfg.Receita.Timeout}))
		if err != nil {
			logg.Error(context.Background(), "failed to build identity client", err)
			os.Exit(1)
		}
		resolver = live
	}

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	cartService, err := cartsvc.NewService(cartsvc.NewGormStore(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	catalogService, err := catalog.NewService(backendClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	identityService, err := identity.NewService(resolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity service", err)
		os.Exit(1)
	}
	addressResolver, err := shipping.NewResolver(viacepClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create address resolver", err)
		os.Exit(1)
	}
	orderService, err := ordersvc.NewService(backendClient, checkoutMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}
	sessionStore, err := checkoutsvc.NewRedisSessionStore(redisClient, cfg.Checkout.SessionTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create session store", err)
		os.Exit(1)
	}
	checkoutService, err := checkoutsvc.NewService(checkoutsvc.Deps{
		Sessions:    sessionStore,
		Carts:       cartService,
		Identity:    identityService,
		Addresses:   addressResolver,
		Freight:     shipping.NewQuoter(cfg.Freight.UnitWeightGrams),
		Orders:      orderService,
		Payments:    pagarmeClient,
		Credentials: redisClient,
		Metrics:     checkoutMetrics,
		Log:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
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
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Credentials: redisClient,
			Carts:       cartService,
			Catalog:     catalogService,
			Checkout:    checkoutService,
			Gatherer:    registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
