package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kjaylee/contentforge/internal/domain/models"
	"github.com/kjaylee/contentforge/internal/domain/services"
	"github.com/kjaylee/contentforge/internal/interfaces/http/middleware"
)

type GenerationHandler struct {
	service *services.GenerationService
	logger  *slog.Logger
}

func NewGenerationHandler(service *services.GenerationService, logger *slog.Logger) *GenerationHandler {
	return &GenerationHandler{service: service, logger: logger}
}

type generateRequest struct {
	URL       string   `json:"url"`
	Text      string   `json:"text"`
	Platforms []string `json:"platforms"`
	Language  string   `json:"language"`
}

// Generate handles POST /api/generate.
func (h *GenerationHandler) Generate(c *gin.Context) {
	var body generateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be valid JSON."})
		return
	}

	platforms := make([]models.Platform, 0, len(body.Platforms))
	for _, p := range body.Platforms {
		platforms = append(platforms, models.Platform(p))
	}

	resp, err := h.service.Generate(c.Request.Context(), middleware.CallerFrom(c), &services.GenerateRequest{
		URL:       body.URL,
		Text:      body.Text,
		Platforms: platforms,
		Language:  body.Language,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Capabilities handles GET /api/generate: the platform catalogue and tier
// limits a client needs to render its platform picker.
func (h *GenerationHandler) Capabilities(c *gin.Context) {
	platforms := make([]gin.H, 0, len(models.KnownPlatforms))
	for _, p := range models.KnownPlatforms {
		profile := models.PlatformProfiles[p]
		platforms = append(platforms, gin.H{
			"id":            p,
			"name":          profile.DisplayName,
			"maxLength":     profile.MaxLength,
			"hashtagBudget": profile.HashtagBudget,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"platforms": platforms,
		"tiers": gin.H{
			string(models.TierFree): models.TierLimitsByTier[models.TierFree],
			string(models.TierPro):  models.TierLimitsByTier[models.TierPro],
		},
	})
}

// History handles GET /api/generations.
func (h *GenerationHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	generations, err := h.service.History(c.Request.Context(), middleware.CallerFrom(c), limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"generations": generations})
}
