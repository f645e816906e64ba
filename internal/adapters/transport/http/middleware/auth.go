package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/karTik-kuMar04/Backend/internal/auth/model"
	"github.com/karTik-kuMar04/Backend/internal/auth/service"
)

const identityKey = "auth.identity"

// RequireAuth is the request gate: it resolves the access token from the
// accessToken cookie or, failing that, the Authorization header, and
// attaches the authenticated identity to the request context. Every
// failure collapses to a uniform 401.
func RequireAuth(svc service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractAccessToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access token is required"})
			return
		}

		user, err := svc.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
			return
		}

		c.Set(identityKey, user)
		c.Next()
	}
}

// Cookie takes precedence over the Authorization header.
func extractAccessToken(c *gin.Context) string {
	if cookie, err := c.Cookie("accessToken"); err == nil && cookie != "" {
		return cookie
	}

	header := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// CurrentUser returns the identity attached by RequireAuth.
func CurrentUser(c *gin.Context) (model.PublicUser, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return model.PublicUser{}, false
	}
	user, ok := v.(model.PublicUser)
	return user, ok
}
