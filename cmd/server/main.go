package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/example/inventory-api/internal/adapter/handler"
	"github.com/example/inventory-api/internal/adapter/storage"
	"github.com/example/inventory-api/internal/auth"
	"github.com/example/inventory-api/internal/core/service"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	_ = godotenv.Load()
	cfg := LoadConfig()
	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("redis", cfg.RedisAddr).
		Msg("starting inventory api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open mysql")
	}
	defer db.Close()
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping mysql")
	}
	log.Info().Msg("connected to mysql")

	if cfg.MigrateOnStart {
		if err := storage.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
	}

	// Redis. The cache is an optimization only, so an unreachable
	// instance degrades to store-only behavior instead of aborting.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, serving from store only")
	} else {
		log.Info().Msg("connected to redis")
	}

	// Wiring
	itemRepo := storage.NewMySQLItemRepository(db)
	userRepo := storage.NewMySQLUserRepository(db)
	cache := storage.NewRedisCache(rdb)

	tokens := auth.NewTokenManager(auth.TokenConfig{
		SecretKey:       cfg.JWTSecret,
		AccessLifetime:  cfg.AccessTokenTTL,
		RefreshLifetime: cfg.RefreshTokenTTL,
		Issuer:          cfg.JWTIssuer,
	})

	inventoryService := service.NewInventoryService(itemRepo, cache)
	authService := service.NewAuthService(userRepo, auth.NewPasswordHasher(), tokens)

	httpHandler := handler.NewHTTPHandler(inventoryService, authService)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpHandler.Routes(),
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Warn().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}
	log.Info().Msg("http server stopped")
}
