package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/TechbyAbrar/match-making-app/internal/cache"
	"github.com/TechbyAbrar/match-making-app/internal/config"
	"github.com/TechbyAbrar/match-making-app/internal/notify"
)

// AppContext holds shared dependencies (DB, Redis, Logger, Notifier, Config)
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Notifier   notify.Notifier
	Cfg        *config.Config
}

// New creates a new AppContext
func New(
	db *gorm.DB,
	rdb *cache.RedisCache,
	logger *slog.Logger,
	notifier notify.Notifier,
	cfg *config.Config,
) *AppContext {
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Notifier:   notifier,
		Cfg:        cfg,
	}
}
