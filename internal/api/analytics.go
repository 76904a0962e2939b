package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/talowa-org/talowa-backend/internal/service"
	"github.com/talowa-org/talowa-backend/pkg/auth"
	"github.com/talowa-org/talowa-backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type analyticsRoutes struct {
	as service.AnalyticsServiceI
	cs service.CodeServiceI
}

func NewAnalyticsRoutes(handler *gin.RouterGroup, as service.AnalyticsServiceI, cs service.CodeServiceI, a *auth.ServiceAuth) {
	r := &analyticsRoutes{as: as, cs: cs}

	handler.GET("/leaderboard", r.GetLeaderboard)

	admin := handler.Group("/admin")
	admin.Use(a.AdminMiddleware())
	{
		admin.GET("/stats/network", r.GetNetworkSummary)
		admin.GET("/codes/:code", r.GetCode)
		admin.POST("/codes/:code/deactivate", r.DeactivateCode)
	}
}

func (r *analyticsRoutes) GetLeaderboard(c *gin.Context) {
	log := logger.Logger()

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	entries, err := r.as.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		log.Error("failed to get leaderboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	out := make([]gin.H, len(entries))
	for i, e := range entries {
		out[i] = gin.H{
			"user_id":               e.UserID,
			"full_name":             e.FullName,
			"referral_code":         e.ReferralCode,
			"current_role":          e.CurrentRole,
			"direct_referral_count": e.DirectReferralCount,
			"total_team_size":       e.TotalTeamSize,
		}
	}

	c.JSON(http.StatusOK, out)
}

func (r *analyticsRoutes) GetNetworkSummary(c *gin.Context) {
	log := logger.Logger()

	summary, err := r.as.NetworkSummary(c.Request.Context())
	if err != nil {
		log.Error("failed to get network summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get network summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_users":    summary.TotalUsers,
		"active_users":   summary.ActiveUsers,
		"pending_users":  summary.PendingUsers,
		"total_referred": summary.TotalReferred,
	})
}

func (r *analyticsRoutes) GetCode(c *gin.Context) {
	log := logger.Logger()

	entry, err := r.cs.GetCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrCodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "referral code not found"})
			return
		}
		log.Error("failed to get code", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":             entry.Code,
		"owner_user_id":    entry.OwnerUserID,
		"active":           entry.Active,
		"click_count":      entry.ClickCount,
		"conversion_count": entry.ConversionCount,
		"created_at":       entry.CreatedAt,
	})
}

func (r *analyticsRoutes) DeactivateCode(c *gin.Context) {
	log := logger.Logger()

	err := r.cs.DeactivateCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrCodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "referral code not found"})
			return
		}
		log.Error("failed to deactivate code", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to deactivate code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": c.Param("code"), "active": false})
}
