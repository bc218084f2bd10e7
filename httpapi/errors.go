package httpapi

import (
	"net/http"

	"chat-relay/errors"

	"github.com/gin-gonic/gin"
)

// respondError translates the core's error taxonomy to HTTP. Every
// failure is per-request; nothing here is fatal to the process.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errors.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, errors.ErrNameTaken):
		status = http.StatusConflict
	case errors.Is(err, errors.ErrUnknownGroup),
		errors.Is(err, errors.ErrUnknownUser),
		errors.Is(err, errors.ErrUnknownFile):
		status = http.StatusNotFound
	case errors.IsAuthorization(err):
		status = http.StatusForbidden
	case errors.IsValidation(err):
		status = http.StatusBadRequest
	case errors.IsPersistence(err):
		status = http.StatusServiceUnavailable
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
