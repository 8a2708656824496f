package handler

import (
	"errors"
	"net/http"

	"github.com/berlincodez/Campus-Skill-link/internal/apperr"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatusFor maps the error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrDuplicateConnection):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrAggregation):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, logger *zap.Logger, err error) {
	status := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		message = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// bindJSON decodes the body; shape errors become validation errors.
func bindJSON(c *gin.Context, out any) error {
	if err := c.ShouldBindJSON(out); err != nil {
		return apperr.Validationf("invalid request body: %v", err)
	}
	return nil
}
