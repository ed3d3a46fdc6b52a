package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/rentroll/internal/errors"
	"github.com/stwalsh4118/rentroll/internal/services"
)

// maxWebhookBytes caps the webhook body; Stripe events are far smaller.
const maxWebhookBytes = 64 << 10

// WebhookHandler receives provider callbacks. It is mounted without
// bearer auth; the signature header authenticates the caller.
type WebhookHandler struct {
	payments services.PaymentService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(payments services.PaymentService) *WebhookHandler {
	return &WebhookHandler{payments: payments}
}

// Stripe handles POST /api/webhooks/stripe.
func (h *WebhookHandler) Stripe(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		apierrors.BadRequest(c, "Failed to read request body", nil)
		return
	}

	if err := h.payments.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		respondError(c, err, "Failed to process webhook")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
