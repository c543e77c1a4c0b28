package main

import (
	"context"
	"flag"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/importer"
	"storefront/internal/logging"
	"storefront/internal/repository/product"

	"go.uber.org/zap"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to product catalog CSV")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("open file", zap.String("file", filePath), zap.Error(err))
	}
	defer f.Close()

	catalog := product.NewPostgres(pool, logger)
	var writer importer.ProductWriter = catalog
	if cfg.RedisAddr != "" {
		cached, client := product.DialCached(ctx, catalog, cfg.RedisAddr, cfg.ProductCacheTTL, logger)
		defer client.Close()
		writer = cached
	}

	imp := importer.NewCSVImporter(f, writer, logger)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal("import failed", zap.Int("imported", count), zap.Error(err))
	}

	logger.Info("import finished",
		zap.Int("products", count),
		zap.Duration("elapsed", time.Since(start).Truncate(time.Millisecond)),
	)
}
