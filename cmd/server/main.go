package main

import (
	"context"

	"github.com/devtinder/api/internal/app"
	"github.com/devtinder/api/internal/auth"
	"github.com/devtinder/api/internal/cache"
	"github.com/devtinder/api/internal/config"
	"github.com/devtinder/api/internal/db"
	"github.com/devtinder/api/internal/logger"
	"github.com/devtinder/api/internal/server"
	"github.com/devtinder/api/internal/service/account"
	"github.com/devtinder/api/internal/service/chat"
	"github.com/devtinder/api/internal/service/match"
)

func main() {
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

	tokens := auth.NewTokenService(cfg)
	appCtx := app.New(cfg, database, redisCache, log, tokens)

	registrars := []server.Registrar{
		account.NewRegistrar(appCtx),
		match.NewRegistrar(appCtx),
		chat.NewRegistrar(appCtx),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	engine := server.NewEngine(cfg, auth.Middleware(tokens), registrars...)
	if err := server.StartHTTPServer(cfg, engine); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
