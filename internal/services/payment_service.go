package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/stwalsh4118/rentroll/internal/authz"
	"github.com/stwalsh4118/rentroll/internal/logger"
	"github.com/stwalsh4118/rentroll/internal/models"
	"github.com/stwalsh4118/rentroll/internal/payments"
	"github.com/stwalsh4118/rentroll/internal/repository"
)

// PaymentGateway is the card payment provider.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req payments.CheckoutRequest) (*payments.Session, error)
	GetCheckoutSession(ctx context.Context, id string) (*payments.Session, error)
	PaymentIntentSucceeded(ctx context.Context, id string) (bool, error)
	ParseWebhook(payload []byte, signature string) (*payments.Event, error)
}

// PaymentConfig holds checkout settings.
type PaymentConfig struct {
	Currency string
	// FrontendURL is where checkout redirects back to.
	FrontendURL string
}

// PaymentInput is the body of a manual payment creation.
type PaymentInput struct {
	LeaseID uint                 `json:"leaseId" binding:"required"`
	Amount  float64              `json:"amount" binding:"required,gt=0"`
	DueDate *DateTime            `json:"dueDate" binding:"required"`
	Status  models.PaymentStatus `json:"status" binding:"omitempty,oneof=PENDING PAID FAILED"`
}

// PaymentPatch is a partial payment update; nil fields are left unchanged.
type PaymentPatch struct {
	Amount                *float64              `json:"amount" binding:"omitempty,gt=0"`
	DueDate               *DateTime             `json:"dueDate"`
	Status                *models.PaymentStatus `json:"status" binding:"omitempty,oneof=PENDING PAID FAILED"`
	PaidAt                *DateTime             `json:"paidAt"`
	StripePaymentIntentID *string               `json:"stripePaymentIntentId" binding:"omitempty,max=255"`
}

// PaymentService defines payment operations and provider reconciliation.
type PaymentService interface {
	List(ctx context.Context, actor authz.Actor) ([]models.Payment, error)
	Get(ctx context.Context, actor authz.Actor, id uint) (*models.Payment, error)
	Create(ctx context.Context, actor authz.Actor, in PaymentInput) (*models.Payment, error)
	Update(ctx context.Context, actor authz.Actor, id uint, patch PaymentPatch) (*models.Payment, error)
	Delete(ctx context.Context, actor authz.Actor, id uint) error

	// MarkPaid confirms a payment by hand. Confirming twice is harmless.
	MarkPaid(ctx context.Context, actor authz.Actor, id uint) (*models.Payment, error)

	// Checkout starts a hosted checkout and returns its URL.
	Checkout(ctx context.Context, actor authz.Actor, id uint) (string, error)

	// Verify asks the provider about a checkout session and confirms the
	// payment when the session is paid. It reports whether it was paid.
	Verify(ctx context.Context, actor authz.Actor, id uint, sessionID string) (bool, error)

	// Sync confirms the actor's pending payments whose intents succeeded and
	// returns how many were confirmed.
	Sync(ctx context.Context, actor authz.Actor) (int, error)

	// HandleWebhook verifies and applies a provider notification. Only
	// signature and configuration problems are returned; failures applying
	// the event are logged.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type paymentService struct {
	payments repository.PaymentRepository
	leases   repository.LeaseRepository
	gateway  PaymentGateway
	cfg      PaymentConfig
	log      *logger.Logger
	now      func() time.Time
}

// NewPaymentService creates a new instance of PaymentService.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	leases repository.LeaseRepository,
	gateway PaymentGateway,
	cfg PaymentConfig,
	log *logger.Logger,
) PaymentService {
	return &paymentService{
		payments: paymentRepo,
		leases:   leases,
		gateway:  gateway,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

func (s *paymentService) List(ctx context.Context, actor authz.Actor) ([]models.Payment, error) {
	if !authz.Can(actor, authz.ResourcePayment, authz.ActionList) {
		return nil, fmt.Errorf("%w: Not authorized to view payments", ErrForbidden)
	}
	list, err := s.payments.List(ctx, authz.ListScope(actor), repository.PaymentFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return list, nil
}

func (s *paymentService) Get(ctx context.Context, actor authz.Actor, id uint) (*models.Payment, error) {
	return s.load(ctx, actor, id, authz.ActionRead, "Not authorized to view this payment")
}

func (s *paymentService) Create(ctx context.Context, actor authz.Actor, in PaymentInput) (*models.Payment, error) {
	lease, err := s.leases.FindByID(ctx, in.LeaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lease: %w", err)
	}
	if lease == nil {
		return nil, notFound("Lease")
	}
	if err := authorize(actor, authz.ResourcePayment, authz.ActionCreate, leaseOwner(lease),
		"Not authorized to create payment for this lease"); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.PaymentPending
	}
	payment := &models.Payment{
		Amount:  in.Amount,
		DueDate: in.DueDate.Time,
		Status:  status,
		LeaseID: lease.ID,
	}
	if status == models.PaymentPaid {
		paidAt := s.now().UTC()
		payment.PaidAt = &paidAt
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	s.log.Info("Payment created", map[string]interface{}{
		"payment_id": payment.ID,
		"lease_id":   lease.ID,
	})
	return s.reload(ctx, payment.ID)
}

func (s *paymentService) Update(ctx context.Context, actor authz.Actor, id uint, patch PaymentPatch) (*models.Payment, error) {
	payment, err := s.load(ctx, actor, id, authz.ActionUpdate, "Not authorized to update this payment")
	if err != nil {
		return nil, err
	}

	if patch.Amount != nil {
		payment.Amount = *patch.Amount
	}
	if patch.DueDate != nil {
		payment.DueDate = patch.DueDate.Time
	}
	if patch.Status != nil {
		payment.Status = *patch.Status
	}
	if patch.PaidAt != nil {
		payment.PaidAt = timePtr(patch.PaidAt)
	}
	if patch.StripePaymentIntentID != nil {
		payment.StripePaymentIntentID = patch.StripePaymentIntentID
	}
	if payment.IsPaid() && payment.PaidAt == nil {
		paidAt := s.now().UTC()
		payment.PaidAt = &paidAt
	}

	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}
	return s.reload(ctx, payment.ID)
}

func (s *paymentService) Delete(ctx context.Context, actor authz.Actor, id uint) error {
	if _, err := s.load(ctx, actor, id, authz.ActionDelete, "Not authorized to delete this payment"); err != nil {
		return err
	}
	if err := s.payments.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return nil
}

func (s *paymentService) MarkPaid(ctx context.Context, actor authz.Actor, id uint) (*models.Payment, error) {
	if _, err := s.load(ctx, actor, id, authz.ActionUpdate, "Not authorized to update this payment"); err != nil {
		return nil, err
	}
	if _, err := s.confirm(ctx, id, nil, "manual"); err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

func (s *paymentService) Checkout(ctx context.Context, actor authz.Actor, id uint) (string, error) {
	payment, err := s.load(ctx, actor, id, authz.ActionPay, "Not authorized to pay this payment")
	if err != nil {
		return "", err
	}
	if payment.IsPaid() {
		return "", fmt.Errorf("%w: Payment already completed", ErrBadRequest)
	}

	propertyTitle, unitNumber := "Property", "N/A"
	if payment.Lease != nil && payment.Lease.Unit != nil {
		unitNumber = payment.Lease.Unit.UnitNumber
		if payment.Lease.Unit.Property != nil {
			propertyTitle = payment.Lease.Unit.Property.Title
		}
	}

	req := payments.CheckoutRequest{
		PaymentID:   payment.ID,
		LeaseID:     payment.LeaseID,
		AmountMinor: int64(math.Round(payment.Amount * 100)),
		Currency:    s.cfg.Currency,
		ProductName: "Rent Payment - " + propertyTitle,
		Description: fmt.Sprintf("Unit %s - Due %s", unitNumber, payment.DueDate.Format("January 2, 2006")),
		SuccessURL: fmt.Sprintf("%s/tenant/payments?success=true&payment_id=%d&session_id={CHECKOUT_SESSION_ID}",
			s.cfg.FrontendURL, payment.ID),
		CancelURL: s.cfg.FrontendURL + "/tenant/payments?canceled=true",
	}
	if payment.Lease != nil && payment.Lease.Tenant != nil && payment.Lease.Tenant.User != nil {
		req.CustomerEmail = payment.Lease.Tenant.User.Email
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		return "", s.providerError("create checkout session", err)
	}

	s.log.Info("Checkout session created", map[string]interface{}{
		"payment_id": payment.ID,
		"session_id": session.ID,
	})
	return session.URL, nil
}

func (s *paymentService) Verify(ctx context.Context, actor authz.Actor, id uint, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, fmt.Errorf("%w: session_id is required", ErrBadRequest)
	}
	if _, err := s.load(ctx, actor, id, authz.ActionRead, "Not authorized to view this payment"); err != nil {
		return false, err
	}

	session, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return false, s.providerError("verify payment", err)
	}
	if session.Metadata[payments.MetadataPaymentID] != strconv.FormatUint(uint64(id), 10) {
		return false, fmt.Errorf("%w: Checkout session does not belong to this payment", ErrBadRequest)
	}
	if !session.Paid {
		return false, nil
	}

	if _, err := s.confirm(ctx, id, optional(session.PaymentIntentID), "verify"); err != nil {
		return false, err
	}
	return true, nil
}

func (s *paymentService) Sync(ctx context.Context, actor authz.Actor) (int, error) {
	if !authz.Can(actor, authz.ResourcePayment, authz.ActionSync) {
		return 0, fmt.Errorf("%w: Not authorized to sync payments", ErrForbidden)
	}

	pending := models.PaymentPending
	list, err := s.payments.List(ctx, authz.ListScope(actor), repository.PaymentFilter{
		Status:     &pending,
		WithIntent: true,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list pending payments: %w", err)
	}

	synced := 0
	for _, payment := range list {
		succeeded, err := s.gateway.PaymentIntentSucceeded(ctx, *payment.StripePaymentIntentID)
		if errors.Is(err, payments.ErrNotConfigured) {
			return synced, s.providerError("sync payments", err)
		}
		if err != nil {
			s.log.Warn("Skipping payment during sync", map[string]interface{}{
				"payment_id": payment.ID,
				"error":      err.Error(),
			})
			continue
		}
		if !succeeded {
			continue
		}
		changed, err := s.confirm(ctx, payment.ID, nil, "sync")
		if err != nil {
			return synced, err
		}
		if changed {
			synced++
		}
	}

	s.log.Info("Payments synced", map[string]interface{}{
		"user_id": actor.UserID,
		"checked": len(list),
		"synced":  synced,
	})
	return synced, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhook(payload, signature)
	switch {
	case errors.Is(err, payments.ErrWebhookNotConfigured):
		return fmt.Errorf("%w: Stripe webhook secret not configured", ErrNotConfigured)
	case errors.Is(err, payments.ErrInvalidSignature):
		return fmt.Errorf("%w: Invalid signature", ErrBadRequest)
	case err != nil:
		return fmt.Errorf("%w: Invalid payload", ErrBadRequest)
	}

	log := s.log.With(map[string]interface{}{
		"event_id":   event.ID,
		"event_type": event.Type,
	})

	switch event.Type {
	case payments.EventCheckoutCompleted:
		id, ok := parsePaymentID(event.PaymentID)
		if !ok {
			log.Warn("Checkout event without payment reference", nil)
			return nil
		}
		if !event.Paid {
			log.Info("Checkout completed without payment", map[string]interface{}{"payment_id": id})
			return nil
		}
		if _, err := s.confirm(ctx, id, optional(event.PaymentIntentID), "webhook"); err != nil {
			log.Error("Failed to confirm payment from webhook", err, map[string]interface{}{"payment_id": id})
		}
	case payments.EventPaymentFailed:
		id, ok := parsePaymentID(event.PaymentID)
		if !ok {
			log.Warn("Payment failure without payment reference", map[string]interface{}{
				"payment_intent_id": event.PaymentIntentID,
			})
			return nil
		}
		changed, err := s.payments.MarkFailed(ctx, id, optional(event.PaymentIntentID))
		if err != nil {
			log.Error("Failed to mark payment failed", err, map[string]interface{}{"payment_id": id})
			return nil
		}
		log.Info("Payment failure recorded", map[string]interface{}{
			"payment_id": id,
			"changed":    changed,
		})
	default:
		log.Debug("Ignoring webhook event", nil)
	}
	return nil
}

// confirm applies the idempotent PAID transition and reports whether this
// call changed the row.
func (s *paymentService) confirm(ctx context.Context, id uint, intentID *string, source string) (bool, error) {
	changed, err := s.payments.Confirm(ctx, id, intentID, s.now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to confirm payment: %w", err)
	}
	s.log.Info("Payment confirmed", map[string]interface{}{
		"payment_id": id,
		"source":     source,
		"changed":    changed,
	})
	return changed, nil
}

func (s *paymentService) providerError(action string, err error) error {
	if errors.Is(err, payments.ErrNotConfigured) {
		return fmt.Errorf("%w: payment provider not configured", ErrNotConfigured)
	}
	s.log.Error("Payment provider call failed", err, map[string]interface{}{"action": action})
	return fmt.Errorf("%w: Stripe error: failed to %s", ErrBadRequest, action)
}

func (s *paymentService) load(ctx context.Context, actor authz.Actor, id uint, act authz.Action, denied string) (*models.Payment, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, notFound("Payment")
	}
	owner := authz.Owner{}
	if payment.Lease != nil {
		owner = leaseOwner(payment.Lease)
	}
	if err := authorize(actor, authz.ResourcePayment, act, owner, denied); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) reload(ctx context.Context, id uint) (*models.Payment, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, notFound("Payment")
	}
	return payment, nil
}

func parsePaymentID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
