package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetops/transport-fleet/internal/api"
	"github.com/fleetops/transport-fleet/internal/core/service"
	"github.com/fleetops/transport-fleet/internal/infrastructure/config"
	mongodb "github.com/fleetops/transport-fleet/internal/infrastructure/db/mongo"
	redisdb "github.com/fleetops/transport-fleet/internal/infrastructure/db/redis"
	"github.com/fleetops/transport-fleet/internal/infrastructure/queue"
	"github.com/fleetops/transport-fleet/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Token issuer (missing signing key is fatal, per configuration contract) ---
	issuer, err := service.NewTokenIssuer(
		cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience,
		cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("token issuer configuration invalid")
	}

	// --- Stores ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = client.Disconnect(shutdownCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	userRepo := mongodb.NewUserRepository(db)
	tokenRepo := mongodb.NewRefreshTokenRepository(db)
	auditRepo := mongodb.NewSecurityAuditRepository(db)
	vehicleRepo := mongodb.NewVehicleRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"users":          userRepo.EnsureIndexes,
		"refresh_tokens": tokenRepo.EnsureIndexes,
		"vehicles":       vehicleRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	// --- Security event fan-out ---
	dispatcher := queue.NewDispatcher(0, queue.NewMetricsSink(log), log)
	dispatcher.Start(ctx)

	// --- Services ---
	authService := service.NewAuthService(userRepo, tokenRepo, auditRepo, issuer, dispatcher, log)
	vehicleService := service.NewVehicleService(vehicleRepo, redisdb.NewVehicleCache(rdb), log)

	// --- HTTP ---
	e := api.NewRouter(api.RouterDeps{
		Log:         log,
		Auth:        authService,
		Vehicles:    vehicleService,
		Mongo:       db,
		Redis:       rdb,
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
		JWTAudience: cfg.JWT.Audience,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("transport fleet api started")

	// --- Graceful shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
