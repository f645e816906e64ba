package http

import (
	"crypto/sha256"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/karTik-kuMar04/Backend/internal/adapters/transport/http/middleware"
	"github.com/karTik-kuMar04/Backend/internal/auth/dto"
	authErrors "github.com/karTik-kuMar04/Backend/internal/auth/errors"
	"github.com/karTik-kuMar04/Backend/internal/auth/model"
	"github.com/karTik-kuMar04/Backend/internal/auth/service"
	"github.com/karTik-kuMar04/Backend/internal/config"
	"github.com/karTik-kuMar04/Backend/internal/infra/metrics"
)

type Handler struct {
	svc     service.AuthService
	cfg     *config.Config
	log     *zap.Logger
	metrics metrics.Collector
}

func NewHandler(svc service.AuthService, cfg *config.Config, log *zap.Logger, collector metrics.Collector) *Handler {
	return &Handler{
		svc:     svc,
		cfg:     cfg,
		log:     log,
		metrics: collector,
	}
}

// RegisterRoutes mounts the user routes. loginThrottle guards the two
// endpoints that accept credentials.
func (h *Handler) RegisterRoutes(r gin.IRouter, loginThrottle gin.HandlerFunc) {
	gate := middleware.RequireAuth(h.svc)

	users := r.Group("/api/v1/users")
	users.POST("/register", h.register)
	users.POST("/login", loginThrottle, h.login)
	users.POST("/refresh-token", loginThrottle, h.refreshToken)
	users.POST("/logout", gate, h.logout)
	users.GET("/current-user", gate, h.currentUser)
	users.DELETE("/account", gate, h.deleteAccount)
}

func (h *Handler) register(c *gin.Context) {
	var body dto.RegisterDTO
	if err := c.ShouldBind(&body); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Error: err.Error()})
		return
	}

	avatarFile, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Error: "avatar image is required"})
		return
	}
	avatar, cleanupAvatar, err := openUpload(avatarFile)
	if err != nil {
		handleError(c, err)
		return
	}
	defer cleanupAvatar()

	var cover *service.Upload
	if coverFile, err := c.FormFile("coverImage"); err == nil {
		opened, cleanup, err := openUpload(coverFile)
		if err != nil {
			handleError(c, err)
			return
		}
		defer cleanup()
		cover = &opened
	}

	h.log.Info("register",
		zap.String("user", fmt.Sprintf("%x", sha256.Sum256([]byte(body.Email)))),
	)

	user, err := h.svc.Register(c.Request.Context(), body, avatar, cover)
	if err != nil {
		handleError(c, err)
		return
	}

	h.metrics.RecordRegistration()
	respond(c, http.StatusCreated, user, "user registered successfully")
}

func openUpload(fh *multipart.FileHeader) (service.Upload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return service.Upload{}, nil, err
	}
	return service.Upload{
		Body:        f,
		ContentType: fh.Header.Get("Content-Type"),
	}, func() { f.Close() }, nil
}

func (h *Handler) login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Error: err.Error()})
		return
	}

	h.log.Info("login",
		zap.String("user", fmt.Sprintf("%x", sha256.Sum256([]byte(body.Username+body.Email)))),
	)

	user, pair, err := h.svc.Login(c.Request.Context(), body)
	if err != nil {
		// The failure counter tracks rejected authentication attempts,
		// not malformed requests.
		if authErrors.IsInvalidCredentials(err) || authErrors.IsNotFound(err) {
			h.metrics.RecordLogin(false)
		}
		handleError(c, err)
		return
	}

	h.metrics.RecordLogin(true)
	h.setTokenCookies(c, pair)
	respond(c, http.StatusOK, gin.H{
		"user":         user,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "user logged in successfully")
}

func (h *Handler) logout(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, APIResponse{Error: "invalid access token"})
		return
	}

	if err := h.svc.Logout(c.Request.Context(), user.ID); err != nil {
		handleError(c, err)
		return
	}

	h.metrics.RecordLogout()
	h.clearTokenCookies(c)
	respond(c, http.StatusOK, gin.H{}, "user logged out successfully")
}

func (h *Handler) deleteAccount(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, APIResponse{Error: "invalid access token"})
		return
	}

	if err := h.svc.DeleteAccount(c.Request.Context(), user.ID); err != nil {
		handleError(c, err)
		return
	}

	h.clearTokenCookies(c)
	respond(c, http.StatusOK, gin.H{}, "account deleted successfully")
}

func (h *Handler) refreshToken(c *gin.Context) {
	presented := h.incomingRefreshToken(c)
	if presented == "" {
		h.metrics.RecordRefresh(false)
		c.JSON(http.StatusUnauthorized, APIResponse{Error: "unauthorized request"})
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), presented)
	if err != nil {
		h.metrics.RecordRefresh(false)
		handleError(c, err)
		return
	}

	h.metrics.RecordRefresh(true)
	h.setTokenCookies(c, pair)
	respond(c, http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "access token refreshed")
}

// The refresh token arrives via cookie or request body.
func (h *Handler) incomingRefreshToken(c *gin.Context) string {
	if cookie, err := c.Cookie("refreshToken"); err == nil && cookie != "" {
		return cookie
	}
	var body dto.RefreshDTO
	if err := c.ShouldBindJSON(&body); err == nil {
		return body.RefreshToken
	}
	return ""
}

func (h *Handler) currentUser(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, APIResponse{Error: "invalid access token"})
		return
	}
	respond(c, http.StatusOK, user, "current user fetched successfully")
}

// Both carriers get the same tokens: cookies for browsers, the JSON
// body for header-based clients.
func (h *Handler) setTokenCookies(c *gin.Context, pair model.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		"accessToken",
		pair.AccessToken,
		int(pair.AccessTTL.Seconds()),
		"/",
		h.cfg.CookieDomain,
		true, // secure
		true, // httpOnly
	)

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		"refreshToken",
		pair.RefreshToken,
		int(pair.RefreshTTL.Seconds()),
		"/",
		h.cfg.CookieDomain,
		true,
		true,
	)
}

func (h *Handler) clearTokenCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("accessToken", "", -1, "/", h.cfg.CookieDomain, true, true)
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("refreshToken", "", -1, "/", h.cfg.CookieDomain, true, true)
}

// StatusRecorder feeds response codes into the metrics collector.
func StatusRecorder(collector metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		collector.RecordHTTPStatus(c.Writer.Status())
	}
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
}
