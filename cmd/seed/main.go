package main

import (
	"context"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
	cartrepo "storefront/internal/repository/cart"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/seed"

	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck
	logger = logger.Named("seed")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	catalog := productrepo.NewPostgres(pool, logger)
	var products seed.CatalogWriter = catalog
	if cfg.RedisAddr != "" {
		// writes through the cache so the API stops serving the old catalog
		cached, client := productrepo.DialCached(ctx, catalog, cfg.RedisAddr, cfg.ProductCacheTTL, logger)
		defer client.Close()
		products = cached
	}
	carts := cartrepo.NewPostgres(pool)
	if err := seed.Apply(ctx, products, carts, cfg.ImageBaseURL, logger); err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}

	logger.Info("seed applied")
}
