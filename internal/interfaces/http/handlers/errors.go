package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kjaylee/contentforge/internal/domain/models"
	"github.com/kjaylee/contentforge/internal/domain/services"
)

// respondError maps the service error families onto status codes. Messages
// from validation and extraction errors are client-safe; everything else gets
// a generic body and a logged detail.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var quotaErr *services.QuotaExceededError
	if errors.As(err, &quotaErr) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "Daily generation limit reached. Upgrade to Pro or try again tomorrow.",
			"usage": quotaErr.Status,
		})
		return
	}

	if errors.Is(err, models.ErrNotConfigured) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Content generation is not available right now. Try again later.",
		})
		return
	}

	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
		return
	}

	if models.IsExtractionError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.Error("request failed",
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Try again."})
}
