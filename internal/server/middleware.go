package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TechbyAbrar/match-making-app/internal/presence"
)

const userIDKey = "user_id"

// Identity resolves the acting user from the X-User-ID header. Upstream
// auth terminates the session token and forwards the resolved id; this
// service only needs to know who is calling.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-ID header"})
			return
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid X-User-ID header"})
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// CurrentUserID returns the authenticated user id set by Identity.
func CurrentUserID(c *gin.Context) uint64 {
	return c.GetUint64(userIDKey)
}

// Presence touches the tracker for every authenticated request. Touch is
// throttled and never fails, so this adds at most one cheap Redis round trip.
func Presence(tracker *presence.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tracker.Touch(c.Request.Context(), CurrentUserID(c))
		c.Next()
	}
}

// RequestLogger logs one structured line per request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"user_id", c.GetUint64(userIDKey),
		)
	}
}
