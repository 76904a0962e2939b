// Package auth guards the admin surface with a static bearer token and
// verifies HMAC signatures on payment webhook deliveries.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/talowa-org/talowa-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

const SignatureHeader = "X-Webhook-Signature"

type ServiceAuth struct {
	adminToken    string
	webhookSecret string
}

func NewServiceAuth(adminToken, webhookSecret string) *ServiceAuth {
	return &ServiceAuth{
		adminToken:    adminToken,
		webhookSecret: webhookSecret,
	}
}

// AdminMiddleware rejects requests that do not carry the configured admin
// bearer token.
func (a *ServiceAuth) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Info("missing authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			log.Info("invalid authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if a.adminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(a.adminToken)) != 1 {
			log.Info("admin token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Next()
	}
}

// VerifyWebhookSignature checks the HMAC-SHA256 hex signature of a raw
// webhook body. With no secret configured every delivery is accepted,
// which is the development default.
func (a *ServiceAuth) VerifyWebhookSignature(body []byte, signature string) bool {
	if a.webhookSecret == "" {
		return true
	}
	mac := hmac.New(sha256.New, []byte(a.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
