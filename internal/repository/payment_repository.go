package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/artschool-api/internal/models"
)

const paymentColumns = "id, enrollment_id, amount, payment_date, payment_method, status"

// PaymentRepository manages persistence for enrollment payments.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a payment, defaulting to PENDING.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now().UTC()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}
	const query = `INSERT INTO payments (enrollment_id, amount, payment_date, payment_method, status)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, payment.EnrollmentID, payment.Amount, payment.PaymentDate,
		payment.Method, payment.Status).Scan(&payment.ID); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) List(ctx context.Context) ([]models.Payment, error) {
	return r.selectWhere(ctx, "list payments", "")
}

func (r *PaymentRepository) ListByEnrollment(ctx context.Context, enrollmentID int64) ([]models.Payment, error) {
	return r.selectWhere(ctx, "list payments by enrollment", "enrollment_id = $1", enrollmentID)
}

func (r *PaymentRepository) ListPending(ctx context.Context) ([]models.Payment, error) {
	return r.selectWhere(ctx, "list pending payments", "status = $1", models.PaymentStatusPending)
}

func (r *PaymentRepository) selectWhere(ctx context.Context, op, where string, args ...interface{}) ([]models.Payment, error) {
	query := "SELECT " + paymentColumns + " FROM payments"
	if where != "" {
		query += " WHERE " + where
	}
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query+" ORDER BY id", args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payments, nil
}

func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	const query = `UPDATE payments SET amount = :amount, payment_date = :payment_date, payment_method = :payment_method, status = :status WHERE id = :id`
	return namedUpdate(ctx, r.db, query, payment, "update payment")
}
