package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"centavo/internal/core/apperror"
)

const HeaderWebhookKey = "X-Webhook-Key"

// WebhookAuth authenticates delivery provider callbacks with a shared key.
// keyHashes maps provider code to the bcrypt hash of its key.
func WebhookAuth(keyHashes map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")
		hash, ok := keyHashes[provider]
		if !ok || hash == "" {
			_ = c.Error(apperror.NewUnauthorized("unknown webhook provider"))
			c.Abort()
			return
		}

		key := c.GetHeader(HeaderWebhookKey)
		if key == "" {
			_ = c.Error(apperror.NewUnauthorized("missing webhook key"))
			c.Abort()
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
			_ = c.Error(apperror.NewUnauthorized("invalid webhook key"))
			c.Abort()
			return
		}

		c.Next()
	}
}
