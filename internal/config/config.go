package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	HTTP struct {
		Host string
		Port string
	}

	Presence struct {
		TouchThrottle time.Duration // max one presence write per user per window
		OfflineCutoff time.Duration // online users idle longer than this go offline
		ReapInterval  time.Duration // must be < OfflineCutoff
	}

	CacheTTL struct {
		Search        time.Duration
		WhoLiked      time.Duration
		Filter        time.Duration
		BlockList     time.Duration
		Unread        time.Duration
		StoryViews    time.Duration
		Notifications time.Duration
	}

	Pagination struct {
		DefaultPageSize int
		MaxPageSize     int
	}
}

func New() *Config {
	cfg := &Config{}

	// App
	cfg.App.ENV = getEnvDefault("APP_ENV", "production")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "api_server")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "matchmaking")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	if dbStr := getEnvDefault("REDIS_DB", "0"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			cfg.Redis.DB = dbInt
		}
	}

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "0.0.0.0")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "8080")

	// Presence. The offline cutoff must exceed both the reap interval and the
	// touch throttle window, otherwise users flicker online/offline each cycle.
	cfg.Presence.TouchThrottle = envSeconds("PRESENCE_TOUCH_THROTTLE_SECONDS", 300)
	cfg.Presence.OfflineCutoff = envMinutes("OFFLINE_CUTOFF_MINUTES", 12)
	cfg.Presence.ReapInterval = envSeconds("PRESENCE_REAP_INTERVAL_SECONDS", 120)

	// Cache TTLs
	cfg.CacheTTL.Search = envSeconds("CACHE_TTL_SEARCH_SECONDS", 30)
	cfg.CacheTTL.WhoLiked = envSeconds("CACHE_TTL_WHO_LIKED_SECONDS", 15)
	cfg.CacheTTL.Filter = envSeconds("CACHE_TTL_FILTER_SECONDS", 30)
	cfg.CacheTTL.BlockList = envSeconds("CACHE_TTL_BLOCKLIST_SECONDS", 60)
	cfg.CacheTTL.Unread = envSeconds("CACHE_TTL_UNREAD_SECONDS", 7*24*3600)
	cfg.CacheTTL.StoryViews = envSeconds("CACHE_TTL_STORY_VIEWS_SECONDS", 24*3600)
	cfg.CacheTTL.Notifications = envSeconds("CACHE_TTL_NOTIFICATIONS_SECONDS", 60)

	// Pagination
	cfg.Pagination.DefaultPageSize = envInt("PAGE_SIZE_DEFAULT", 10)
	cfg.Pagination.MaxPageSize = envInt("PAGE_SIZE_MAX", 50)

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func envInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envSeconds(k string, def int) time.Duration {
	return time.Duration(envInt(k, def)) * time.Second
}

func envMinutes(k string, def int) time.Duration {
	return time.Duration(envInt(k, def)) * time.Minute
}
