package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
	bannerrepo "storefront/internal/repository/banner"
	categoryrepo "storefront/internal/repository/category"
	productrepo "storefront/internal/repository/product"
	salerepo "storefront/internal/repository/sale"
	"storefront/internal/seed"
	catalogsvc "storefront/internal/service/catalog"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.Development(), "seed")
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

	products := productrepo.NewPostgres(pool, logger)
	categories := categoryrepo.NewPostgres(pool, logger)
	sales := salerepo.NewPostgres(pool, logger)
	repos := seed.Repos{
		Categories: categories,
		Products:   products,
		Sales:      sales,
		Banners:    bannerrepo.NewPostgres(pool, logger),
	}
	if err := seed.Apply(ctx, repos, time.Now(), logger); err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}

	logger.Info("seed applied")

	if cfg.RedisURL != "" {
		rdb, err := cache.Dial(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("catalog cache not invalidated", zap.Error(err))
			return
		}
		defer rdb.Close()
		catalog := catalogsvc.New(products, categories, sales, cache.NewRedis(rdb, "storefront:", logger), 0, logger)
		if err := catalog.Invalidate(ctx); err != nil {
			logger.Warn("catalog cache not invalidated", zap.Error(err))
		}
	}
}
