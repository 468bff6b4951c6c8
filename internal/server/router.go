package server

import (
	"github.com/gin-gonic/gin"

	"github.com/TechbyAbrar/match-making-app/internal/app"
	"github.com/TechbyAbrar/match-making-app/internal/chat"
	"github.com/TechbyAbrar/match-making-app/internal/feed"
	"github.com/TechbyAbrar/match-making-app/internal/presence"
	"github.com/TechbyAbrar/match-making-app/internal/social"
	"github.com/TechbyAbrar/match-making-app/internal/story"
)

// Setup wires services and handlers into the HTTP router. Every
// authenticated request also touches the presence tracker.
func Setup(appCtx *app.AppContext, tracker *presence.Tracker) *gin.Engine {
	if appCtx.Cfg.App.ENV == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(appCtx.Logger))

	socialHandler := NewSocialHandler(social.NewService(appCtx))
	feedHandler := NewFeedHandler(feed.NewAssembler(appCtx))
	storyHandler := NewStoryHandler(story.NewService(appCtx))
	chatHandler := NewChatHandler(chat.NewService(appCtx))
	notificationHandler := NewNotificationHandler(appCtx)
	healthHandler := NewHealthHandler(appCtx.DB, appCtx.RedisCache)

	// Probes, no auth.
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)

	api := r.Group("/api/v1")
	api.Use(Identity(), Presence(tracker))
	{
		api.GET("/feed", feedHandler.Global)

		api.POST("/users/:id/like", socialHandler.Like)
		api.DELETE("/users/:id/like", socialHandler.Unlike)
		api.POST("/users/:id/share", socialHandler.Share)
		api.POST("/users/:id/block", socialHandler.Block)
		api.DELETE("/users/:id/block", socialHandler.Unblock)
		api.POST("/users/:id/report", socialHandler.Report)
		api.POST("/users/:id/messages", chatHandler.Send)
		api.GET("/users/search", socialHandler.Search)
		api.GET("/users/filter", socialHandler.Filter)

		api.GET("/me/liked-by", socialHandler.WhoLiked)
		api.GET("/me/blocked", socialHandler.ListBlocked)
		api.GET("/me/stories", storyHandler.ListMine)
		api.GET("/me/notifications", notificationHandler.List)
		api.POST("/me/notifications/:notificationId/read", notificationHandler.MarkRead)

		api.GET("/stories", storyHandler.ListGlobal)
		api.POST("/stories", storyHandler.Create)
		api.DELETE("/stories/:storyId", storyHandler.Delete)
		api.POST("/stories/:storyId/view", storyHandler.View)
		api.POST("/stories/:storyId/like", storyHandler.Like)
		api.DELETE("/stories/:storyId/like", storyHandler.Unlike)
		api.GET("/stories/:storyId/viewers", storyHandler.Viewers)

		api.GET("/threads/:threadId/messages", chatHandler.Messages)
		api.GET("/threads/:threadId/unread", chatHandler.Unread)
	}

	return r
}
