package api

import (
	"errors"
	"net/http"

	"github.com/talowa-org/talowa-backend/internal/service"
	"github.com/talowa-org/talowa-backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type linkRoutes struct {
	ls service.LinkServiceI
}

func NewLinkRoutes(handler *gin.RouterGroup, ls service.LinkServiceI) {
	r := &linkRoutes{ls: ls}
	h := handler.Group("/links")
	{
		h.POST("/capture", r.CaptureLink)
	}
}

type CaptureLinkRequest struct {
	URL string `json:"url" binding:"required"`
}

// CaptureLink is called when a device opens a referral deep link before
// the user has registered. The extracted code waits in the pending store
// until registration consumes it.
func (r *linkRoutes) CaptureLink(c *gin.Context) {
	log := logger.Logger()

	var req CaptureLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	code, err := r.ls.CaptureLink(c.Request.Context(), req.URL)
	if err != nil {
		if errors.Is(err, service.ErrNotReferralLink) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "url is not a referral link"})
			return
		}
		log.Error("failed to capture link", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to capture link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": code})
}
