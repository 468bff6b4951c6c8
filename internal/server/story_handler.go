package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	errs "github.com/TechbyAbrar/match-making-app/internal/errors"
	"github.com/TechbyAbrar/match-making-app/internal/story"
)

// StoryHandler exposes the ephemeral story operations.
type StoryHandler struct {
	svc *story.Service
}

func NewStoryHandler(svc *story.Service) *StoryHandler {
	return &StoryHandler{svc: svc}
}

type createStoryRequest struct {
	Text     string `json:"text"`
	MediaURL string `json:"media_url"`
}

// Create handles POST /stories.
func (h *StoryHandler) Create(c *gin.Context) {
	var req createStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errs.Validation("invalid story payload"))
		return
	}
	st, err := h.svc.Create(c.Request.Context(), CurrentUserID(c), req.Text, req.MediaURL)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

// ListMine handles GET /me/stories.
func (h *StoryHandler) ListMine(c *gin.Context) {
	stories, err := h.svc.ListMine(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": stories})
}

// ListGlobal handles GET /stories.
func (h *StoryHandler) ListGlobal(c *gin.Context) {
	stories, err := h.svc.ListGlobal(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": stories})
}

// Delete handles DELETE /stories/:storyId.
func (h *StoryHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("storyId"), CurrentUserID(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "story deleted"})
}

// View handles POST /stories/:storyId/view. It returns the story and
// records the view.
func (h *StoryHandler) View(c *gin.Context) {
	st, err := h.svc.RecordView(c.Request.Context(), c.Param("storyId"), CurrentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Like handles POST /stories/:storyId/like.
func (h *StoryHandler) Like(c *gin.Context) {
	if err := h.svc.Like(c.Request.Context(), c.Param("storyId"), CurrentUserID(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"liked": true})
}

// Unlike handles DELETE /stories/:storyId/like.
func (h *StoryHandler) Unlike(c *gin.Context) {
	if err := h.svc.Unlike(c.Request.Context(), c.Param("storyId"), CurrentUserID(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": false})
}

// Viewers handles GET /stories/:storyId/viewers?page=&page_size=.
func (h *StoryHandler) Viewers(c *gin.Context) {
	page, size := queryPage(c)
	viewers, err := h.svc.Viewers(c.Request.Context(), c.Param("storyId"), CurrentUserID(c), page, size)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"viewers": viewers})
}
