package memory

import (
	"context"
	"time"

	"github.com/noah-isme/artschool-api/internal/models"
)

// PaymentRepository stores payments in memory.
type PaymentRepository struct {
	rows *table[models.Payment]
}

// NewPaymentRepository constructs an empty PaymentRepository.
func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{rows: newTable(func(p *models.Payment, id int64) { p.ID = id })}
}

// Create stores the payment, defaulting status to PENDING.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now().UTC()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}
	r.rows.insert(payment)
	return nil
}

func (r *PaymentRepository) List(ctx context.Context) ([]models.Payment, error) {
	return r.rows.filter(nil), nil
}

// ListByEnrollment returns payments in id order.
func (r *PaymentRepository) ListByEnrollment(ctx context.Context, enrollmentID int64) ([]models.Payment, error) {
	return r.rows.filter(func(p models.Payment) bool { return p.EnrollmentID == enrollmentID }), nil
}

func (r *PaymentRepository) ListPending(ctx context.Context) ([]models.Payment, error) {
	return r.rows.filter(func(p models.Payment) bool { return p.Status == models.PaymentStatusPending }), nil
}

func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return r.rows.replace(payment.ID, *payment)
}
