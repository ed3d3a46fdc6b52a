package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/rentroll/internal/services"
)

// PaymentHandler handles /api/payments, including Stripe checkout.
type PaymentHandler struct {
	service services.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service services.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// CheckoutResponse carries the hosted checkout URL.
type CheckoutResponse struct {
	URL string `json:"url"`
}

// StatusResponse is the body of the verify and sync endpoints.
type StatusResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	SyncedCount *int   `json:"synced_count,omitempty"`
}

// List handles GET /api/payments.
func (h *PaymentHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	payments, err := h.service.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err, "Failed to list payments")
		return
	}
	c.JSON(http.StatusOK, payments)
}

// Get handles GET /api/payments/:id.
func (h *PaymentHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	payment, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, "Failed to load payment")
		return
	}
	c.JSON(http.StatusOK, payment)
}

// Create handles POST /api/payments.
func (h *PaymentHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var in services.PaymentInput
	if !bindJSON(c, &in) {
		return
	}

	payment, err := h.service.Create(c.Request.Context(), actor, in)
	if err != nil {
		respondError(c, err, "Failed to create payment")
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// Update handles PUT /api/payments/:id.
func (h *PaymentHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var patch services.PaymentPatch
	if !bindJSON(c, &patch) {
		return
	}

	payment, err := h.service.Update(c.Request.Context(), actor, id, patch)
	if err != nil {
		respondError(c, err, "Failed to update payment")
		return
	}
	c.JSON(http.StatusOK, payment)
}

// Delete handles DELETE /api/payments/:id.
func (h *PaymentHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err, "Failed to delete payment")
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkPaid handles POST /api/payments/:id/pay.
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	payment, err := h.service.MarkPaid(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, "Failed to mark payment as paid")
		return
	}
	c.JSON(http.StatusOK, payment)
}

// Checkout handles POST /api/payments/:id/checkout.
func (h *PaymentHandler) Checkout(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	url, err := h.service.Checkout(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, "Failed to create checkout session")
		return
	}
	c.JSON(http.StatusOK, CheckoutResponse{URL: url})
}

// Verify handles POST /api/payments/:id/verify?session_id=, called by the
// frontend when Stripe redirects back after checkout.
func (h *PaymentHandler) Verify(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	paid, err := h.service.Verify(c.Request.Context(), actor, id, c.Query("session_id"))
	if err != nil {
		respondError(c, err, "Failed to verify payment")
		return
	}
	if !paid {
		c.JSON(http.StatusOK, StatusResponse{Status: "pending", Message: "Payment not yet completed"})
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "success", Message: "Payment verified and marked as paid"})
}

// Sync handles POST /api/payments/sync.
func (h *PaymentHandler) Sync(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	synced, err := h.service.Sync(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err, "Failed to sync payments")
		return
	}
	c.JSON(http.StatusOK, StatusResponse{
		Status:      "success",
		Message:     fmt.Sprintf("Synced %d payment(s) with Stripe", synced),
		SyncedCount: &synced,
	})
}
