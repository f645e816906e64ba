package middleware

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AttemptStore counts hits per key inside a fixed window.
type AttemptStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// NewLoginThrottle rejects clients that hammer the credential endpoints.
// The counter lives in redis so the window survives restarts and is
// shared across replicas. A store failure lets the request through.
func NewLoginThrottle(store AttemptStore, limit int, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err != nil {
			host = c.Request.RemoteAddr
		}

		n, err := store.Hit(c.Request.Context(), host, window)
		if err != nil {
			log.Warn("login throttle unavailable", zap.Error(err))
			c.Next()
			return
		}

		if n > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts, try again later"})
			return
		}
		c.Next()
	}
}
