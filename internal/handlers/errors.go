package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-api/internal/middleware"
	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/services"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

const (
	CodeValidationError         = "VALIDATION_ERROR"
	CodeResourceNotFound        = "RESOURCE_NOT_FOUND"
	CodeSlotUnavailable         = "SLOT_UNAVAILABLE"
	CodeInvalidTransition       = "INVALID_TRANSITION"
	CodeConflict                = "CONFLICT"
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	CodeInvalidCredentials      = "INVALID_CREDENTIALS"
	CodeUserNotAuthenticated    = "USER_NOT_AUTHENTICATED"
	CodeInternalError           = "INTERNAL_ERROR"
)

func sendError(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
		Details: details,
	})
}

func sendValidationError(c *gin.Context, message string) {
	sendError(c, http.StatusBadRequest, CodeValidationError, message, nil)
}

// respondError maps a service error onto its HTTP reply.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrSlotUnavailable):
		sendError(c, http.StatusConflict, CodeSlotUnavailable,
			"This slot was just taken or withdrawn. Please pick another one.", gin.H{"refresh": true})
	case errors.Is(err, models.ErrInvalidTransition):
		sendError(c, http.StatusConflict, CodeInvalidTransition, err.Error(), nil)
	case errors.Is(err, models.ErrNotFound):
		sendError(c, http.StatusNotFound, CodeResourceNotFound, err.Error(), nil)
	case errors.Is(err, models.ErrValidation):
		sendError(c, http.StatusBadRequest, CodeValidationError, err.Error(), nil)
	case errors.Is(err, models.ErrConflict):
		sendError(c, http.StatusConflict, CodeConflict, err.Error(), nil)
	case errors.Is(err, models.ErrForbidden):
		sendError(c, http.StatusForbidden, CodeInsufficientPermissions, err.Error(), nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		sendError(c, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid credentials", nil)
	default:
		log.Printf("[http] %s %s: %v", c.Request.Method, c.FullPath(), err)
		sendError(c, http.StatusInternalServerError, CodeInternalError, "Something went wrong", nil)
	}
}

// actor returns the authenticated caller or writes a 401.
func actor(c *gin.Context) (models.Actor, bool) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		sendError(c, http.StatusUnauthorized, CodeUserNotAuthenticated, "User not authenticated", nil)
	}
	return a, ok
}
