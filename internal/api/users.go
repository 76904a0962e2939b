package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/talowa-org/talowa-backend/internal/model"
	"github.com/talowa-org/talowa-backend/internal/service"
	"github.com/talowa-org/talowa-backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type userRoutes struct {
	rs service.RegistrationServiceI
	ls service.LinkServiceI
	as service.AnalyticsServiceI
}

func NewUserRoutes(handler *gin.RouterGroup, rs service.RegistrationServiceI, ls service.LinkServiceI, as service.AnalyticsServiceI) {
	r := &userRoutes{rs: rs, ls: ls, as: as}
	h := handler.Group("/users")
	{
		h.POST("/", r.RegisterUser)
		h.GET("/:user_id", r.GetUser)
		h.GET("/:user_id/referrals", r.GetUserReferrals)
		h.GET("/:user_id/link", r.GetUserLink)
	}
}

type RegisterUserRequest struct {
	UserID       string `json:"user_id"`
	Phone        string `json:"phone"`
	FullName     string `json:"full_name" binding:"required"`
	ReferralCode string `json:"referral_code"`
}

type UserResponse struct {
	UserID              string     `json:"user_id"`
	Phone               string     `json:"phone"`
	FullName            string     `json:"full_name"`
	ReferralCode        string     `json:"referral_code"`
	ProvisionalRef      string     `json:"provisional_ref"`
	ReferredBy          *string    `json:"referred_by"`
	ReferralChain       []string   `json:"referral_chain"`
	DirectReferralCount int        `json:"direct_referral_count"`
	TotalTeamSize       int        `json:"total_team_size"`
	CurrentRole         string     `json:"current_role"`
	Status              string     `json:"status"`
	MembershipPaid      bool       `json:"membership_paid"`
	PaidAt              *time.Time `json:"paid_at,omitempty"`
	RegisteredAt        time.Time  `json:"registered_at"`
}

func toUserResponse(u *model.User) UserResponse {
	chain := u.ReferralChain
	if chain == nil {
		chain = []string{}
	}
	return UserResponse{
		UserID:              u.ID,
		Phone:               u.Phone,
		FullName:            u.FullName,
		ReferralCode:        u.ReferralCode,
		ProvisionalRef:      u.ProvisionalRef,
		ReferredBy:          u.ReferredBy,
		ReferralChain:       chain,
		DirectReferralCount: u.DirectReferralCount,
		TotalTeamSize:       u.TotalTeamSize,
		CurrentRole:         u.CurrentRole,
		Status:              string(u.Status),
		MembershipPaid:      u.MembershipPaid,
		PaidAt:              u.PaidAt,
		RegisteredAt:        u.RegisteredAt,
	}
}

// RegisterUser creates a provisional member. The response carries the
// freshly minted referral code; the client can share it immediately, long
// before any payment settles.
func (r *userRoutes) RegisterUser(c *gin.Context) {
	log := logger.Logger()

	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := r.rs.Register(c.Request.Context(), service.RegistrationInput{
		UserID:       req.UserID,
		Phone:        req.Phone,
		FullName:     req.FullName,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		log.Error("failed to register user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

func (r *userRoutes) GetUser(c *gin.Context) {
	log := logger.Logger()

	user, err := r.rs.GetUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no user associated with the provided user_id"})
			return
		}
		log.Error("failed to get user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

type teamMember struct {
	UserID              string `json:"user_id"`
	FullName            string `json:"full_name"`
	CurrentRole         string `json:"current_role"`
	DirectReferralCount int    `json:"direct_referral_count"`
	TotalTeamSize       int    `json:"total_team_size"`
}

func (r *userRoutes) GetUserReferrals(c *gin.Context) {
	log := logger.Logger()

	stats, err := r.as.TeamStats(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no user associated with the provided user_id"})
			return
		}
		log.Error("failed to get team stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get referrals"})
		return
	}

	members := make([]teamMember, len(stats.DirectReferrals))
	for i, ref := range stats.DirectReferrals {
		members[i] = teamMember{
			UserID:              ref.ID,
			FullName:            ref.FullName,
			CurrentRole:         ref.CurrentRole,
			DirectReferralCount: ref.DirectReferralCount,
			TotalTeamSize:       ref.TotalTeamSize,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":               stats.UserID,
		"current_role":          stats.CurrentRole,
		"direct_referral_count": stats.DirectReferralCount,
		"total_team_size":       stats.TotalTeamSize,
		"direct_referrals":      members,
	})
}

func (r *userRoutes) GetUserLink(c *gin.Context) {
	log := logger.Logger()

	link, err := r.ls.BuildLink(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no user associated with the provided user_id"})
			return
		}
		log.Error("failed to build referral link", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build referral link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"link": link})
}
