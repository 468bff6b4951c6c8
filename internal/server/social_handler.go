package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	errs "github.com/TechbyAbrar/match-making-app/internal/errors"
	"github.com/TechbyAbrar/match-making-app/internal/repository"
	"github.com/TechbyAbrar/match-making-app/internal/social"
)

// SocialHandler exposes the social graph operations over HTTP.
type SocialHandler struct {
	svc *social.Service
}

func NewSocialHandler(svc *social.Service) *SocialHandler {
	return &SocialHandler{svc: svc}
}

// Like handles POST /users/:id/like.
func (h *SocialHandler) Like(c *gin.Context) {
	target, err := pathUserID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	like, err := h.svc.Like(c.Request.Context(), CurrentUserID(c), target)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"from_user_id": like.FromUserID,
		"to_user_id":   like.ToUserID,
		"created_at":   like.CreatedAt,
	})
}

// Unlike handles DELETE /users/:id/like.
func (h *SocialHandler) Unlike(c *gin.Context) {
	target, err := pathUserID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := h.svc.Unlike(c.Request.Context(), CurrentUserID(c), target); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "like removed"})
}

// WhoLiked handles GET /me/liked-by?page=&page_size=&radius_km=.
func (h *SocialHandler) WhoLiked(c *gin.Context) {
	radius, err := queryFloat(c, "radius_km")
	if err != nil {
		abortWithError(c, err)
		return
	}
	page, size := queryPage(c)

	res, err := h.svc.WhoLiked(c.Request.Context(), CurrentUserID(c), page, size, radius)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Share handles POST /users/:id/share.
func (h *SocialHandler) Share(c *gin.Context) {
	target, err := pathUserID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	created, err := h.svc.Share(c.Request.Context(), CurrentUserID(c), target)
	if err != nil {
		abortWithError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"shared": true})
}

// Block handles POST /users/:id/block.
func (h *SocialHandler) Block(c *gin.Context) {
	target, err := pathUserID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	created, err := h.svc.Block(c.Request.Context(), CurrentUserID(c), target)
	if err != nil {
		abortWithError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"blocked": true})
}

// Unblock handles DELETE /users/:id/block.
func (h *SocialHandler) Unblock(c *gin.Context) {
	target, err := pathUserID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := h.svc.Unblock(c.Request.Context(), CurrentUserID(c), target); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": false})
}

// ListBlocked handles GET /me/blocked.
func (h *SocialHandler) ListBlocked(c *gin.Context) {
	users, err := h.svc.ListBlocked(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Search handles GET /users/search?q=.
func (h *SocialHandler) Search(c *gin.Context) {
	users, err := h.svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Filter handles GET /users/filter?gender=&min_age=&max_age=&max_distance_km=.
func (h *SocialHandler) Filter(c *gin.Context) {
	var params repository.FilterParams
	if g := c.Query("gender"); g != "" {
		params.Gender = &g
	}

	var err error
	if params.MinAge, err = queryInt(c, "min_age"); err != nil {
		abortWithError(c, err)
		return
	}
	if params.MaxAge, err = queryInt(c, "max_age"); err != nil {
		abortWithError(c, err)
		return
	}
	if params.MaxDistanceKM, err = queryFloat(c, "max_distance_km"); err != nil {
		abortWithError(c, err)
		return
	}

	users, err := h.svc.Filter(c.Request.Context(), params)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type reportRequest struct {
	Reason  string `json:"reason" binding:"required"`
	Comment string `json:"comment"`
}

// Report handles POST /users/:id/report.
func (h *SocialHandler) Report(c *gin.Context) {
	target, err := pathUserID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errs.Validation("reason is required"))
		return
	}
	report, err := h.svc.Report(c.Request.Context(), CurrentUserID(c), target, req.Reason, req.Comment)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report_id": report.ID})
}
