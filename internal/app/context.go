package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/trailnet/trailnet-backend/internal/cache"
)

// AppContext holds shared dependencies (DB, Redis, Logger, etc.)
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
}

// New creates a new AppContext
func New(gdb *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) *AppContext {
	return &AppContext{
		DB:         gdb,
		RedisCache: rdb,
		Logger:     logger,
	}
}
