package main

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/trailnet/trailnet-backend/internal/app"
	"github.com/trailnet/trailnet-backend/internal/cache"
	"github.com/trailnet/trailnet-backend/internal/config"
	"github.com/trailnet/trailnet-backend/internal/db"
	"github.com/trailnet/trailnet-backend/internal/logger"
	"github.com/trailnet/trailnet-backend/internal/server"
	"github.com/trailnet/trailnet-backend/internal/service/account"
)

func main() {
	// .env is optional, real env vars win
	_ = godotenv.Load()

	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(database, redisCache, log)
	svc := account.NewService(appCtx)

	if cfg.App.Env == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	router := server.NewRouter(svc, log)

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, router); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
