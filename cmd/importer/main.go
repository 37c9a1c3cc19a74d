package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/importer"
	"storefront/internal/logging"
	categoryrepo "storefront/internal/repository/category"
	productrepo "storefront/internal/repository/product"
	salerepo "storefront/internal/repository/sale"
	catalogsvc "storefront/internal/service/catalog"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to a products or categories CSV file")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger, err := logging.New(cfg.Development(), "importer")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("open file", zap.Error(err))
	}
	defer f.Close()

	products := productrepo.NewPostgres(pool, logger)
	categories := categoryrepo.NewPostgres(pool, logger)
	imp := importer.NewCSVImporter(f, products, categories, logger)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err), zap.Int("imported", count))
	}

	logger.Info("import finished",
		zap.String("file", filePath),
		zap.Int("count", count),
		zap.Duration("took", time.Since(start).Truncate(time.Millisecond)))

	if cfg.RedisURL != "" {
		rdb, err := cache.Dial(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("catalog cache not invalidated", zap.Error(err))
			return
		}
		defer rdb.Close()
		catalog := catalogsvc.New(products, categories, salerepo.NewPostgres(pool, logger), cache.NewRedis(rdb, "storefront:", logger), 0, logger)
		if err := catalog.Invalidate(ctx); err != nil {
			logger.Warn("catalog cache not invalidated", zap.Error(err))
		}
	}
}
