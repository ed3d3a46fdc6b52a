package repository

import (
	"context"
	"time"

	"github.com/stwalsh4118/rentroll/internal/authz"
	"github.com/stwalsh4118/rentroll/internal/models"
	"gorm.io/gorm"
)

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	LeaseID *uint
	Status  *models.PaymentStatus
	// DueBefore keeps payments due strictly before the time.
	DueBefore *time.Time
	// DueFrom keeps payments due at or after the time.
	DueFrom *time.Time
	// WithIntent keeps payments that carry a provider payment-intent id.
	WithIntent bool
}

// PaymentRepository defines data access for payments.
// Payments are returned with their lease, the lease's unit and property,
// and its tenant and user loaded.
type PaymentRepository interface {
	List(ctx context.Context, scope authz.Scope, filter PaymentFilter) ([]models.Payment, error)

	// FindByID returns nil, nil if the payment does not exist.
	FindByID(ctx context.Context, id uint) (*models.Payment, error)

	Create(ctx context.Context, payment *models.Payment) error

	// CreateBatch inserts all payments in one transaction.
	CreateBatch(ctx context.Context, payments []models.Payment) error

	Update(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id uint) error

	// Confirm marks the payment PAID unless it already is. The first
	// confirmation sets paid_at and keeps any existing intent id; later
	// calls change nothing and report false.
	Confirm(ctx context.Context, id uint, intentID *string, paidAt time.Time) (bool, error)

	// MarkFailed sets FAILED on a PENDING payment. PAID payments are never
	// downgraded.
	MarkFailed(ctx context.Context, id uint, intentID *string) (bool, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new instance of PaymentRepository.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) List(ctx context.Context, scope authz.Scope, filter PaymentFilter) ([]models.Payment, error) {
	q := applyScope(r.db.WithContext(ctx).Model(&models.Payment{}), "payments", scope)
	if filter.LeaseID != nil {
		q = q.Where("payments.lease_id = ?", *filter.LeaseID)
	}
	if filter.Status != nil {
		q = q.Where("payments.status = ?", *filter.Status)
	}
	if filter.DueBefore != nil {
		q = q.Where("payments.due_date < ?", *filter.DueBefore)
	}
	if filter.DueFrom != nil {
		q = q.Where("payments.due_date >= ?", *filter.DueFrom)
	}
	if filter.WithIntent {
		q = q.Where("payments.stripe_payment_intent_id IS NOT NULL AND payments.stripe_payment_intent_id <> ''")
	}

	var payments []models.Payment
	if err := preloadLease(q.Preload("Lease"), "Lease.").Order("payments.due_date, payments.id").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	q := preloadLease(r.db.WithContext(ctx).Preload("Lease"), "Lease.")
	found, err := first(q, &payment, id)
	if err != nil || !found {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return translate(r.db.WithContext(ctx).Omit("Lease").Create(payment).Error)
}

func (r *paymentRepository) CreateBatch(ctx context.Context, payments []models.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Omit("Lease").Create(&payments).Error)
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return translate(r.db.WithContext(ctx).Omit("Lease").Save(payment).Error)
}

func (r *paymentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Payment{}).Error
}

func (r *paymentRepository) Confirm(ctx context.Context, id uint, intentID *string, paidAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status <> ?", id, models.PaymentPaid).
		Updates(map[string]interface{}{
			"status":                   models.PaymentPaid,
			"paid_at":                  paidAt,
			"stripe_payment_intent_id": gorm.Expr("COALESCE(stripe_payment_intent_id, ?)", nullable(intentID)),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *paymentRepository) MarkFailed(ctx context.Context, id uint, intentID *string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, models.PaymentPending).
		Updates(map[string]interface{}{
			"status":                   models.PaymentFailed,
			"stripe_payment_intent_id": gorm.Expr("COALESCE(stripe_payment_intent_id, ?)", nullable(intentID)),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func nullable(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
