package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/logging"
	cartrepo "storefront/internal/repository/cart"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	productsvc "storefront/internal/service/product"
	"storefront/internal/telemetry"

	"go.uber.org/zap"
)

var version = "dev"

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck
	logger = logger.With(zap.String("service", "storefront-api"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, "storefront-api", version, cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal("init tracing", zap.Error(err))
	}

	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	var productRepo productrepo.Repository = productrepo.NewPostgres(dbpool, logger)
	if cfg.RedisAddr != "" {
		cached, client := productrepo.DialCached(ctx, productRepo, cfg.RedisAddr, cfg.ProductCacheTTL, logger)
		defer client.Close()
		productRepo = cached
		logger.Info("product cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.ProductCacheTTL))
	}

	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool)

	cartService := cartsvc.New(cartRepo, productRepo, cfg.ImageBaseURL, logger)
	checkoutService := checkoutsvc.New(cartRepo, orderRepo, logger)
	productService := productsvc.New(productRepo, cfg.ImageBaseURL, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CartSvc:     cartService,
		CheckoutSvc: checkoutService,
		ProductSvc:  productService,
	}, cfg.CORSAllowOrigins)
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	go checkoutService.Run(ctx, cfg.ReconcileInterval)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("received signal, shutting down")
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracer shutdown", zap.Error(err))
	}
}
