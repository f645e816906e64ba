package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authErrors "github.com/karTik-kuMar04/Backend/internal/auth/errors"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respond(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, APIResponse{Success: true, Data: data, Message: message})
}

// handleError is the single boundary translator from error kinds to
// status-coded responses.
func handleError(c *gin.Context, err error) {
	switch {
	case authErrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, APIResponse{Error: err.Error()})
	case authErrors.IsInvalidCredentials(err):
		c.JSON(http.StatusUnauthorized, APIResponse{Error: "invalid credentials"})
	case authErrors.IsInvalidToken(err):
		c.JSON(http.StatusUnauthorized, APIResponse{Error: "invalid token"})
	case authErrors.IsAlreadyExists(err):
		c.JSON(http.StatusConflict, APIResponse{Error: "user with this email or username already exists"})
	case authErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, APIResponse{Error: "user does not exist"})
	default:
		c.JSON(http.StatusInternalServerError, APIResponse{Error: "internal server error"})
	}
}
