package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	propertiesapp "iasrentals/internal/app/handlers/properties"
	"iasrentals/internal/app/uow"
	"iasrentals/internal/domain/shared/fault"
	"iasrentals/internal/infra/storage/s3"
)

// respondError writes the error body for err. Classified errors keep their
// message; anything else is logged and reported as an internal error.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "status", status, "error", err)
		}
		message := "internal error"
		if status == http.StatusServiceUnavailable {
			message = err.Error()
		}
		c.AbortWithStatusJSON(status, gin.H{"error": message})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, uow.ErrUnitOfWorkMissing),
		errors.Is(err, propertiesapp.ErrUploaderUnavailable),
		errors.Is(err, s3.ErrNotConfigured):
		return http.StatusServiceUnavailable
	}
	kind, ok := fault.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case fault.NotFound:
		return http.StatusNotFound
	case fault.Forbidden:
		return http.StatusForbidden
	case fault.Conflict:
		return http.StatusConflict
	case fault.BadRequest:
		return http.StatusBadRequest
	case fault.Unauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}
