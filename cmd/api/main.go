package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/internal/banner"
	"storefront/internal/cache"
	"storefront/internal/cartstore"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/events"
	"storefront/internal/httpserver"
	"storefront/internal/localstore"
	"storefront/internal/logging"
	bannerrepo "storefront/internal/repository/banner"
	cartrepo "storefront/internal/repository/cart"
	categoryrepo "storefront/internal/repository/category"
	productrepo "storefront/internal/repository/product"
	salerepo "storefront/internal/repository/sale"
	tokenrepo "storefront/internal/repository/token"
	anonymoussvc "storefront/internal/service/anonymous"
	cartsvc "storefront/internal/service/cart"
	catalogsvc "storefront/internal/service/catalog"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.Development(), "api")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	var (
		viewCache  cache.Cache        = cache.NewMemory()
		guestStore localstore.Storage = localstore.NewMemory()
		publisher  events.Publisher   = events.Noop{}
		rdb        *redis.Client
	)
	if cfg.RedisURL != "" {
		rdb, err = cache.Dial(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		viewCache = cache.NewRedis(rdb, "storefront:", logger)
		guestStore = localstore.NewRedis(rdb, "storefront:", cfg.GuestCartTTL)
		logger.Info("using redis for cache and guest carts")
	}
	if cfg.RabbitMQURL != "" {
		p, err := events.Dial(cfg.RabbitMQURL, logger)
		if err != nil {
			logger.Warn("rabbitmq unavailable, events disabled", zap.Error(err))
		} else {
			publisher = p
		}
	}
	defer publisher.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	categoryRepo := categoryrepo.NewPostgres(dbpool, logger)
	saleRepo := salerepo.NewPostgres(dbpool, logger)
	bannerRepo := bannerrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool, logger)

	catalogService := catalogsvc.New(productRepo, categoryRepo, saleRepo, viewCache, cfg.CacheTTL, logger)
	cartService := cartsvc.New(cartsvc.Options{
		Customers: cartstore.NewRemote(cartRepo),
		Guests:    cartstore.NewGuest(guestStore, logger),
		Products:  productRepo,
		Sales:     saleRepo,
		Cache:     viewCache,
		Events:    publisher,
		Logger:    logger,
		ViewTTL:   cfg.CacheTTL,
		Currency:  cfg.Currency,
	})
	anonymousService := anonymoussvc.NewWithStore(tokenRepo, cfg.GuestCartTTL, logger)
	rotator := banner.NewRotator(bannerRepo, cfg.BannerRotateInterval, logger)

	go rotator.Run(ctx)
	go anonymousService.Sweep(ctx, time.Hour)

	if cfg.AuthJWTSecret == "" {
		logger.Warn("AUTH_JWT_SECRET is empty, customer tokens are rejected")
	}

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CatalogSvc:   catalogService,
		CartSvc:      cartService,
		AnonymousSvc: anonymousService,
		Banners:      rotator,
		JWTSecret:    cfg.AuthJWTSecret,
		CORSOrigins:  cfg.CORSOrigins,
		CartRate:     cfg.CartRatePerSecond,
		CartBurst:    cfg.CartRateBurst,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	// stop background workers before draining open requests
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
