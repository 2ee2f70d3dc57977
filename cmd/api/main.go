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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/packfinderz-carts/api/controllers"
	cartcontrollers "github.com/angelmondragon/packfinderz-carts/api/controllers/cart"
	"github.com/angelmondragon/packfinderz-carts/api/routes"
	"github.com/angelmondragon/packfinderz-carts/api/views"
	"github.com/angelmondragon/packfinderz-carts/internal/cart"
	product "github.com/angelmondragon/packfinderz-carts/internal/products"
	"github.com/angelmondragon/packfinderz-carts/pkg/config"
	"github.com/angelmondragon/packfinderz-carts/pkg/db"
	"github.com/angelmondragon/packfinderz-carts/pkg/instance"
	"github.com/angelmondragon/packfinderz-carts/pkg/logger"
	"github.com/angelmondragon/packfinderz-carts/pkg/metrics"
	"github.com/angelmondragon/packfinderz-carts/pkg/migrate"
	"github.com/angelmondragon/packfinderz-carts/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "carts-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "carts-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error
	defer func() {
		if err := closeAll(closers); err != nil {
			logg.Error(context.Background(), "error releasing resources", err)
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	closers = append(closers, dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var (
		cache       cart.Cache
		cachePinger controllers.Pinger
	)
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient.Close)
		cache = cart.NewRedisCache(redisClient, cfg.Redis.CartTTL)
		cachePinger = redisClient
	} else {
		logg.Info(ctx, "redis not configured, cart cache disabled")
	}

	productRepo := product.NewRepository(dbClient.DB())
	productService, err := product.NewService(productRepo)
	if err != nil {
		logg.Error(ctx, "failed to create product service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.NewRepository(dbClient.DB()), productRepo, dbClient, cache, logg)
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}

	renderer, err := views.New()
	if err != nil {
		logg.Error(ctx, "failed to parse views", err)
		os.Exit(1)
	}

	cartController, err := cartcontrollers.NewController(cartService, productService, renderer, logg)
	if err != nil {
		logg.Error(ctx, "failed to create cart controller", err)
		os.Exit(1)
	}

	var (
		httpMetrics *metrics.HTTPMetrics
		gatherer    prometheus.Gatherer
	)
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		httpMetrics = metrics.NewHTTPMetrics(registry)
		gatherer = registry
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, cachePinger, cartController, httpMetrics, gatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(serverCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			_ = closeAll(closers)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(serverCtx, "graceful shutdown failed", err)
		}
	}
}

// closeAll releases resources in reverse order of acquisition.
func closeAll(closers []func() error) error {
	var err error
	for i := len(closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, closers[i]())
	}
	return err
}
