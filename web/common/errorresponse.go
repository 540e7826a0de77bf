package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	licensing "licensedesk.com/licensedesk/licensing/core"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		Message: message,
	}
}

// StatusCode maps licensing errors to HTTP statuses. Anything unrecognised
// is a storage fault.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, licensing.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, licensing.ErrConflict), errors.Is(err, licensing.ErrAlreadyBound):
		return http.StatusConflict
	case errors.Is(err, licensing.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, licensing.ErrNotActivatable):
		return http.StatusForbidden
	case errors.Is(err, licensing.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// AbortWithError writes the error envelope. Internal errors are logged and
// their detail is not sent to the client.
func AbortWithError(c *gin.Context, log *zap.Logger, err error) {
	status := StatusCode(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.Error(err),
		)
		message = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, NewErrorResponse(message))
}
