package handler

import (
	"errors"
	"net/http"
	"strings"

	"feedback-system/internal/service"
	"feedback-system/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"status":  "error",
		"message": message,
	})
}

// respondServiceError translates service sentinel errors into the HTTP
// taxonomy. Anything unrecognized is a 500 and gets logged; the generic
// message never leaks internals.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		respondError(c, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, service.ErrNoUpdates):
		respondError(c, http.StatusBadRequest, "No updates provided")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrNotOwner):
		respondError(c, http.StatusForbidden, "Not authorized to perform this action")
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrFeedbackNotFound):
		respondError(c, http.StatusNotFound, "Feedback not found")
	case errors.Is(err, service.ErrEmailExists):
		respondError(c, http.StatusConflict, "Email already registered")
	default:
		logger.Log.Error("Unhandled service error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// validationMessage strips the wrapping sentinel prefix so the client
// sees only the field-level detail.
func validationMessage(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return msg
}
