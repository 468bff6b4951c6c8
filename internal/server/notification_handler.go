package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TechbyAbrar/match-making-app/internal/app"
	"github.com/TechbyAbrar/match-making-app/internal/cache"
	errs "github.com/TechbyAbrar/match-making-app/internal/errors"
	"github.com/TechbyAbrar/match-making-app/internal/repository"
)

const notificationListLimit = 50

// NotificationHandler exposes the notification inbox written by the
// dispatch outbox. Unread counts are served from a cached counter that
// the dispatcher bumps; a miss is seeded from the database.
type NotificationHandler struct {
	appCtx *app.AppContext
	repo   *repository.NotificationRepository
}

func NewNotificationHandler(appCtx *app.AppContext) *NotificationHandler {
	return &NotificationHandler{
		appCtx: appCtx,
		repo:   repository.NewNotificationRepository(appCtx.DB),
	}
}

// List handles GET /me/notifications.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := CurrentUserID(c)

	notifications, err := h.repo.ListRecent(c.Request.Context(), userID, notificationListLimit)
	if err != nil {
		abortWithError(c, errs.Map(err))
		return
	}
	unread, err := h.unreadCount(c, userID)
	if err != nil {
		abortWithError(c, errs.Map(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// unreadCount serves the cached counter when present and seeds it from
// the database on a miss. Cache failures degrade to the database count.
func (h *NotificationHandler) unreadCount(c *gin.Context, userID uint64) (int64, error) {
	ctx := c.Request.Context()
	key := cache.KeyForUnreadNotifications(userID)

	if cached, err := h.appCtx.RedisCache.GetInt(ctx, key); err == nil {
		return cached, nil
	}

	unread, err := h.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := h.appCtx.RedisCache.Set(ctx, key, unread, h.appCtx.Cfg.CacheTTL.Notifications); err != nil {
		h.appCtx.Logger.Warn("unread notification counter seed failed", "user_id", userID, "err", err)
	}
	return unread, nil
}

// MarkRead handles POST /me/notifications/:notificationId/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("notificationId"), 10, 64)
	if err != nil {
		abortWithError(c, errs.Validation("invalid notificationId"))
		return
	}
	userID := CurrentUserID(c)
	if err := h.repo.MarkRead(c.Request.Context(), id, userID); err != nil {
		abortWithError(c, errs.Map(err))
		return
	}
	// Drop the cached counter; the next list reseeds it from the database.
	if err := h.appCtx.RedisCache.Del(c.Request.Context(), cache.KeyForUnreadNotifications(userID)); err != nil {
		h.appCtx.Logger.Warn("unread notification counter invalidation failed", "user_id", userID, "err", err)
	}
	c.JSON(http.StatusOK, gin.H{"read": true})
}
