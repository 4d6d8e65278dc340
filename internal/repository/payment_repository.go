package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

const paymentSelect = `SELECT p.id, p.student_id, p.amount, p.status, p.description, p.payment_date, p.created_at, p.updated_at,
        s.first_name || ' ' || s.last_name AS student_name
        FROM payments p JOIN students s ON s.id = p.student_id`

// PaymentRepository persists payment records.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// List returns payments ordered by payment date, newest first.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentRecord, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("p.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("p.payment_date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("p.payment_date < $%d", len(args)+1))
		args = append(args, models.RangeEnd(*filter.DateTo))
	}
	query := fmt.Sprintf("%s WHERE %s ORDER BY p.payment_date DESC", paymentSelect, strings.Join(conditions, " AND "))

	var payments []models.PaymentRecord
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// FindByID fetches a payment.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.PaymentRecord, error) {
	var payment models.PaymentRecord
	if err := r.db.GetContext(ctx, &payment, paymentSelect+" WHERE p.id = $1", id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// Create inserts a payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now
	const query = `INSERT INTO payments (id, student_id, amount, status, description, payment_date, created_at, updated_at)
        VALUES (:id, :student_id, :amount, :status, :description, :payment_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// Update overwrites the mutable columns of a payment.
func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	payment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE payments SET student_id = :student_id, amount = :amount, status = :status, description = :description,
        payment_date = :payment_date, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return nil
}

// Delete removes a payment.
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "payments", id)
}
