package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	redisstore "github.com/karTik-kuMar04/Backend/internal/adapters/db/redis"
)

func throttledRouter(t *testing.T, limit int) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	t.Cleanup(mr.Close)
	store := redisstore.NewRedisAttemptStore(redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()}))

	r := gin.New()
	r.POST("/login", NewLoginThrottle(store, limit, time.Minute, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, mr
}

func hit(r *gin.Engine) int {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.1:55000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestLoginThrottle_UnderLimit(t *testing.T) {
	r, _ := throttledRouter(t, 3)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, hit(r))
	}
}

func TestLoginThrottle_OverLimit(t *testing.T) {
	r, _ := throttledRouter(t, 2)
	hit(r)
	hit(r)
	require.Equal(t, http.StatusTooManyRequests, hit(r))
}

func TestLoginThrottle_WindowResets(t *testing.T) {
	r, mr := throttledRouter(t, 1)
	hit(r)
	require.Equal(t, http.StatusTooManyRequests, hit(r))

	mr.FastForward(2 * time.Minute)
	require.Equal(t, http.StatusOK, hit(r))
}

func TestLoginThrottle_StoreDownFailsOpen(t *testing.T) {
	r, mr := throttledRouter(t, 1)
	mr.Close()
	require.Equal(t, http.StatusOK, hit(r))
}
