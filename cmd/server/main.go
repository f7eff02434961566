package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/example/storefront/internal/adapter/handler"
	"github.com/example/storefront/internal/adapter/storage"
	"github.com/example/storefront/internal/core/service"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/logger"
	"github.com/example/storefront/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "storefront",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Error("failed to open mysql", "error", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to ping mysql", "error", err)
		os.Exit(1)
	}
	log.Info("connected to mysql")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to redis")

	cache := storage.NewRedisAdapter(rdb)
	catalogRepo := storage.NewMySQLCatalogRepository(db)
	cartRepo := storage.NewMySQLCartRepository(db)
	orderRepo := storage.NewMySQLOrderRepository(db)
	txManager := storage.NewSQLTxManager(db)

	catalogService := service.NewCatalogService(catalogRepo, cache, service.CatalogConfig{
		CacheTTL:     cfg.ProductCacheTTL,
		DefaultLimit: cfg.PageDefaultLimit,
		MaxLimit:     cfg.PageMaxLimit,
	}, log)

	cartService := service.NewCartService(cartRepo, catalogRepo, cache, service.CartConfig{
		LockTTL:  cfg.CartLockTTL,
		CacheTTL: cfg.CartCacheTTL,
	}, log)

	checkoutService := service.NewCheckoutService(cartRepo, catalogRepo, orderRepo, cache, txManager, service.CheckoutConfig{
		LockTTL: cfg.CheckoutLockTTL,
	}, log)

	h := handler.NewHTTPHandler(catalogService, cartService, checkoutService, log)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: h.Router(),
	}

	go func() {
		log.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info("http server stopped")

	rdb.Close()
	db.Close()
	log.Info("connections closed")
}
