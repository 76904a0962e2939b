package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/talowa-org/talowa-backend/internal/model"
	"github.com/talowa-org/talowa-backend/internal/service"
	"github.com/talowa-org/talowa-backend/pkg/auth"
	"github.com/talowa-org/talowa-backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type paymentRoutes struct {
	as service.ActivationServiceI
	a  *auth.ServiceAuth
}

func NewPaymentRoutes(handler *gin.RouterGroup, as service.ActivationServiceI, a *auth.ServiceAuth) {
	r := &paymentRoutes{as: as, a: a}
	h := handler.Group("/payments")
	{
		h.POST("/webhook", r.HandleWebhook)
	}
}

// HandleWebhook receives payment events from the gateway. Delivery is
// at-least-once, so a settled event for an already active user is answered
// 200 like the first one; anything else would keep the gateway retrying
// forever. Failed events are acknowledged without changing any state.
func (r *paymentRoutes) HandleWebhook(c *gin.Context) {
	log := logger.Logger()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if !r.a.VerifyWebhookSignature(body, c.GetHeader(auth.SignatureHeader)) {
		log.Info("webhook signature rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var event model.PaymentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if event.UserID == "" || event.PaymentRef == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and payment_ref required"})
		return
	}

	switch event.Outcome {
	case model.PaymentSettled:
		result, err := r.as.Activate(c.Request.Context(), event.UserID, event.PaymentRef)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no user associated with the provided user_id"})
				return
			}
			log.Error("failed to activate user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to activate user"})
			return
		}

		// Attachment is reported off the user record, not the attempt:
		// a replayed delivery did not attach anything itself but the
		// response must still describe the state the first one left.
		c.JSON(http.StatusOK, gin.H{
			"received":       true,
			"already_active": result.AlreadyActive,
			"attached":       result.User.ReferredBy != nil,
			"status":         result.User.Status,
		})

	case model.PaymentFailed:
		err := r.as.RecordFailure(c.Request.Context(), event.UserID, event.PaymentRef)
		if err != nil && !errors.Is(err, service.ErrUserNotFound) {
			log.Error("failed to record payment failure", zap.Error(err))
		}
		c.JSON(http.StatusOK, gin.H{"received": true})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown outcome"})
	}
}
