package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/TechbyAbrar/match-making-app/internal/app"
	"github.com/TechbyAbrar/match-making-app/internal/cache"
	"github.com/TechbyAbrar/match-making-app/internal/config"
	"github.com/TechbyAbrar/match-making-app/internal/db"
	"github.com/TechbyAbrar/match-making-app/internal/logger"
	"github.com/TechbyAbrar/match-making-app/internal/notify"
	"github.com/TechbyAbrar/match-making-app/internal/presence"
	"github.com/TechbyAbrar/match-making-app/internal/repository"
	"github.com/TechbyAbrar/match-making-app/internal/server"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	notifier := notify.NewDBNotifier(repository.NewNotificationRepository(database), redisCache, log)
	appCtx := app.New(database, redisCache, log, notifier, cfg)

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	// Background reaper flips idle users offline until shutdown.
	tracker := presence.NewTracker(
		repository.NewUserRepository(database),
		redisCache,
		log,
		cfg.Presence.TouchThrottle,
		cfg.Presence.OfflineCutoff,
		cfg.Presence.ReapInterval,
	)
	go tracker.Run(ctx)

	router := server.Setup(appCtx, tracker)

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := router.Run(addr); err != nil {
		log.Error("server stopped", "err", err)
	}
}
