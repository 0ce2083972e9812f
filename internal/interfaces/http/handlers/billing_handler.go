package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kjaylee/contentforge/internal/domain/services"
	"github.com/kjaylee/contentforge/internal/interfaces/http/middleware"
)

type BillingHandler struct {
	payments services.PaymentService
	logger   *slog.Logger
}

func NewBillingHandler(payments services.PaymentService, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{payments: payments, logger: logger}
}

// Checkout handles POST /api/billing/checkout.
func (h *BillingHandler) Checkout(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	if !caller.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sign in to upgrade."})
		return
	}

	url, err := h.payments.CreateCheckoutSession(c.Request.Context(), caller.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Portal handles POST /api/billing/portal.
func (h *BillingHandler) Portal(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	if !caller.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sign in to manage billing."})
		return
	}

	url, err := h.payments.CreatePortalSession(c.Request.Context(), caller.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Webhook handles POST /api/billing/webhook. Stripe retries on non-2xx, so
// decode and state-sync failures return 400 to trigger redelivery.
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	if err := h.payments.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		h.logger.Warn("webhook rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "webhook not processed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
