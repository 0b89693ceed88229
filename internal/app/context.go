package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/devtinder/api/internal/auth"
	"github.com/devtinder/api/internal/cache"
	"github.com/devtinder/api/internal/config"
)

// AppContext holds shared dependencies (DB, Redis, Logger, token service).
// Components receive it at construction instead of reaching for globals.
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Tokens     *auth.TokenService
}

// New creates a new AppContext
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, tokens *auth.TokenService) *AppContext {
	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Tokens:     tokens,
	}
}
