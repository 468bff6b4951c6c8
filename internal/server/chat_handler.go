package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TechbyAbrar/match-making-app/internal/chat"
	errs "github.com/TechbyAbrar/match-making-app/internal/errors"
)

// ChatHandler exposes direct messaging.
type ChatHandler struct {
	svc *chat.Service
}

func NewChatHandler(svc *chat.Service) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// Send handles POST /users/:id/messages.
func (h *ChatHandler) Send(c *gin.Context) {
	recipient, err := pathUserID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errs.Validation("content is required"))
		return
	}
	msg, err := h.svc.SendMessage(c.Request.Context(), CurrentUserID(c), recipient, req.Content)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// Messages handles GET /threads/:threadId/messages.
func (h *ChatHandler) Messages(c *gin.Context) {
	threadID, err := strconv.ParseUint(c.Param("threadId"), 10, 64)
	if err != nil {
		abortWithError(c, errs.Validation("invalid threadId"))
		return
	}
	messages, err := h.svc.ListMessages(c.Request.Context(), threadID, CurrentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// Unread handles GET /threads/:threadId/unread.
func (h *ChatHandler) Unread(c *gin.Context) {
	threadID, err := strconv.ParseUint(c.Param("threadId"), 10, 64)
	if err != nil {
		abortWithError(c, errs.Validation("invalid threadId"))
		return
	}
	count := h.svc.UnreadCount(c.Request.Context(), CurrentUserID(c), threadID)
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}
