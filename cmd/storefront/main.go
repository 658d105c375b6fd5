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

	"github.com/fjod/go_cart/storefront/internal/analytics"
	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/cache"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Failed to load .env: %v", err)
	}
	cfg := loadConfig()

	lg, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()
	zap.ReplaceGlobals(lg)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	newCache := func(string) cache.QueryCache { return cache.NewMemoryCache() }
	if cfg.CacheBackend == "redis" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			lg.Fatal("Redis connection failed", zap.Error(err))
		}
		lg.Info("Redis ping succeeded", zap.String("addr", cfg.RedisAddr))
		newCache = func(sessionID string) cache.QueryCache {
			return cache.NewRedisCache(redisClient, sessionID)
		}
	}

	var tracker analytics.Tracker
	if len(cfg.KafkaBrokers) > 0 {
		kt := analytics.NewKafkaTracker(analytics.NewKafkaWriter(cfg.KafkaBrokers...), lg)
		go kt.Run(ctx)
		tracker = kt
		lg.Info("Kafka tracking enabled", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	var breaker *api.Breaker
	if cfg.BreakerEnabled {
		breaker = api.NewBreaker("commerce-api", lg)
	}

	secret := cfg.SessionSecret
	if secret == "" {
		// sessions will not survive a restart
		secret = uuid.NewString() + uuid.NewString()
		lg.Warn("SESSION_SECRET not set, using a random key")
	}

	registry := h.NewRegistry(h.NewServiceFactory(h.ServicesConfig{
		API: api.Config{
			BaseURL:   cfg.CommerceAPIURL,
			Timeout:   cfg.RequestTimeout,
			UserAgent: "storefront/1.0",
		},
		Breaker: breaker,
		Cache:   newCache,
		Tracker: tracker,
		Log:     lg,
	}), cfg.SessionIdleTimeout, lg)
	go registry.Run(ctx, time.Minute)

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: h.NewRouter(h.RouterConfig{
			Registry:           registry,
			Sessions:           h.NewCookieStore(secret, cfg.SessionIdleTimeout, cfg.SecureCookies),
			RequestTimeout:     cfg.RequestTimeout,
			MaxRequestBodySize: cfg.MaxRequestBodySize,
			Log:                lg,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("Storefront starting", zap.String("port", cfg.HTTPPort), zap.String("commerce_api", cfg.CommerceAPIURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("server forced to shutdown", zap.Error(err))
	}
	stop()
	lg.Info("server exited")
}
