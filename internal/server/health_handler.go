package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/TechbyAbrar/match-making-app/internal/cache"
)

// HealthHandler answers liveness and readiness probes.
type HealthHandler struct {
	db  *gorm.DB
	rdb *cache.RedisCache
}

func NewHealthHandler(db *gorm.DB, rdb *cache.RedisCache) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb}
}

// Health is liveness: the process is up.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready is readiness: both backing stores answer.
func (h *HealthHandler) Ready(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
		return
	}
	if err := h.rdb.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
