// Package payments talks to the card payment provider.
package payments

import "errors"

// Webhook event types the service reacts to.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentFailed     = "payment_intent.payment_failed"
)

// Metadata keys attached to checkout sessions and payment intents.
const (
	MetadataPaymentID = "payment_id"
	MetadataLeaseID   = "lease_id"
)

var (
	// ErrNotConfigured is returned by API calls when no secret key is set.
	ErrNotConfigured = errors.New("payment provider not configured")
	// ErrInvalidSignature is returned when a webhook payload fails verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrWebhookNotConfigured is returned when no webhook secret is set.
	ErrWebhookNotConfigured = errors.New("webhook secret not configured")
)

// CheckoutRequest describes a single-item hosted checkout.
type CheckoutRequest struct {
	PaymentID     uint
	LeaseID       uint
	AmountMinor   int64
	Currency      string
	ProductName   string
	Description   string
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
}

// Session is the provider's view of a checkout session.
type Session struct {
	ID              string
	URL             string
	Paid            bool
	PaymentIntentID string
	Metadata        map[string]string
}

// Event is a verified webhook notification.
type Event struct {
	ID              string
	Type            string
	PaymentID       string
	PaymentIntentID string
	Paid            bool
}
