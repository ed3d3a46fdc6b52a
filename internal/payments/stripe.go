package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"github.com/stwalsh4118/rentroll/internal/logger"
)

// StripeGateway implements checkout, lookups and webhook verification on Stripe.
type StripeGateway struct {
	api           *client.API
	hasKey        bool
	webhookSecret string
}

// StripeOptions configures a StripeGateway.
type StripeOptions struct {
	SecretKey     string
	WebhookSecret string
	// BaseURL overrides the API endpoint. Used by tests.
	BaseURL string
	Logger  *logger.Logger
}

// NewStripeGateway creates a gateway with its own client; it never touches
// the stripe package's global key. Without a secret key every API call
// returns ErrNotConfigured; webhooks only need the webhook secret.
func NewStripeGateway(opts StripeOptions) *StripeGateway {
	cfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(2),
	}
	if opts.BaseURL != "" {
		cfg.URL = stripe.String(opts.BaseURL)
	}
	if opts.Logger != nil {
		cfg.LeveledLogger = &leveledLogger{log: opts.Logger.WithComponent("stripe")}
	}

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, cfg)
	api := client.New(opts.SecretKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})
	return &StripeGateway{api: api, hasKey: opts.SecretKey != "", webhookSecret: opts.WebhookSecret}
}

// CreateCheckoutSession starts a hosted checkout for one payment. The payment
// and lease ids travel as metadata on both the session and its payment intent.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error) {
	if !g.hasKey {
		return nil, ErrNotConfigured
	}

	metadata := map[string]string{
		MetadataPaymentID: strconv.FormatUint(uint64(req.PaymentID), 10),
		MetadataLeaseID:   strconv.FormatUint(uint64(req.LeaseID), 10),
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(req.ProductName),
						Description: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(req.AmountMinor),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: metadata,
		},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return toSession(s), nil
}

// GetCheckoutSession fetches a session by id.
func (g *StripeGateway) GetCheckoutSession(ctx context.Context, id string) (*Session, error) {
	if !g.hasKey {
		return nil, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := g.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}
	return toSession(s), nil
}

// PaymentIntentSucceeded reports whether the intent has succeeded.
func (g *StripeGateway) PaymentIntentSucceeded(ctx context.Context, id string) (bool, error) {
	if !g.hasKey {
		return false, ErrNotConfigured
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		return false, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}
	return pi.Status == stripe.PaymentIntentStatusSucceeded, nil
}

// ParseWebhook verifies the signature header and decodes the events the
// service handles. Other event types are returned with only ID and Type set.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	if g.webhookSecret == "" {
		return nil, ErrWebhookNotConfigured
	}

	evt, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	event := &Event{ID: evt.ID, Type: string(evt.Type)}
	switch event.Type {
	case EventCheckoutCompleted:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(evt.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("failed to decode checkout session: %w", err)
		}
		event.PaymentID = s.Metadata[MetadataPaymentID]
		event.Paid = s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid
		if s.PaymentIntent != nil {
			event.PaymentIntentID = s.PaymentIntent.ID
		}
	case EventPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(evt.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("failed to decode payment intent: %w", err)
		}
		event.PaymentID = pi.Metadata[MetadataPaymentID]
		event.PaymentIntentID = pi.ID
	}
	return event, nil
}

func toSession(s *stripe.CheckoutSession) *Session {
	session := &Session{
		ID:       s.ID,
		URL:      s.URL,
		Paid:     s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Metadata: s.Metadata,
	}
	if s.PaymentIntent != nil {
		session.PaymentIntentID = s.PaymentIntent.ID
	}
	return session
}

// leveledLogger adapts the application logger to stripe's logging interface.
type leveledLogger struct {
	log *logger.Logger
}

func (l *leveledLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...), nil)
}

func (l *leveledLogger) Infof(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...), nil)
}

func (l *leveledLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, v...), nil)
}

func (l *leveledLogger) Errorf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...), nil, nil)
}
