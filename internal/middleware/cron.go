package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chalodk/lims-sub002/internal/logger"
)

// CronMiddleware gates the scheduled trigger surface with a shared secret.
// The scheduler is the only caller; it is not a user-facing API.
type CronMiddleware struct {
	log    *logger.Logger
	secret string
}

func NewCronMiddleware(log *logger.Logger, secret string) *CronMiddleware {
	middlewareLogger := log.With("middleware", "CronMiddleware")
	return &CronMiddleware{log: middlewareLogger, secret: secret}
}

func (cm *CronMiddleware) RequireCronSecret() gin.HandlerFunc {
	return func(c *gin.Context) {
		if cm.secret == "" {
			cm.log.Warn("Cron secret not configured, rejecting scheduled call")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "cron disabled"})
			return
		}
		provided := c.GetHeader("X-Cron-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(cm.secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
