package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TechbyAbrar/match-making-app/internal/feed"
)

// FeedHandler exposes the global discovery feed.
type FeedHandler struct {
	asm *feed.Assembler
}

func NewFeedHandler(asm *feed.Assembler) *FeedHandler {
	return &FeedHandler{asm: asm}
}

// Global handles GET /feed?page=&page_size=.
func (h *FeedHandler) Global(c *gin.Context) {
	page, size := queryPage(c)
	res, err := h.asm.GlobalFeed(c.Request.Context(), CurrentUserID(c), page, size)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
