package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kjaylee/contentforge/internal/domain/services"
	"github.com/kjaylee/contentforge/internal/interfaces/http/middleware"
)

type UsageHandler struct {
	usage  *services.UsageService
	logger *slog.Logger
}

func NewUsageHandler(usage *services.UsageService, logger *slog.Logger) *UsageHandler {
	return &UsageHandler{usage: usage, logger: logger}
}

// Status handles GET /api/usage.
func (h *UsageHandler) Status(c *gin.Context) {
	status, err := h.usage.Status(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, status)
}
