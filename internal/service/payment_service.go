package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

type paymentRepository interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentRecord, error)
	FindByID(ctx context.Context, id string) (*models.PaymentRecord, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id string) error
}

// CreatePaymentRequest holds payload for recording a payment.
type CreatePaymentRequest struct {
	StudentID   string               `json:"studentId" validate:"required,uuid"`
	Amount      float64              `json:"amount" validate:"gte=0"`
	Status      models.PaymentStatus `json:"status" validate:"required,payment_status"`
	Description string               `json:"description" validate:"max=255"`
	PaymentDate time.Time            `json:"paymentDate" validate:"required"`
}

// UpdatePaymentRequest holds a partial update.
type UpdatePaymentRequest struct {
	StudentID   *string               `json:"studentId" validate:"omitempty,uuid"`
	Amount      *float64              `json:"amount" validate:"omitempty,gte=0"`
	Status      *models.PaymentStatus `json:"status" validate:"omitempty,payment_status"`
	Description *string               `json:"description" validate:"omitempty,max=255"`
	PaymentDate *time.Time            `json:"paymentDate"`
}

// PaymentService manages student fee payments.
type PaymentService struct {
	repo      paymentRepository
	students  existenceChecker
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService constructs the payment service.
func NewPaymentService(repo paymentRepository, students existenceChecker, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, students: students, cache: cache, validator: ensureValidator(validate), logger: logger}
}

// List returns payments.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentRecord, error) {
	payments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list payments")
	}
	return payments, nil
}

// Get returns one payment.
func (s *PaymentService) Get(ctx context.Context, id string) (*models.PaymentRecord, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "payment not found", "failed to load payment")
	}
	return payment, nil
}

// Create records a payment for an existing student.
func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid payment payload")
	}
	if err := requireStudent(ctx, s.students, req.StudentID); err != nil {
		return nil, err
	}
	payment := &models.Payment{
		StudentID:   req.StudentID,
		Amount:      req.Amount,
		Status:      req.Status,
		Description: req.Description,
		PaymentDate: req.PaymentDate.UTC(),
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, writeError(err, "student does not exist", "failed to create payment")
	}
	s.cache.InvalidateAggregates(ctx)
	return payment, nil
}

// Update applies a partial update.
func (s *PaymentService) Update(ctx context.Context, id string, req UpdatePaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid payment payload")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "payment not found", "failed to load payment")
	}
	payment := record.Payment
	if req.StudentID != nil && *req.StudentID != payment.StudentID {
		if err := requireStudent(ctx, s.students, *req.StudentID); err != nil {
			return nil, err
		}
		payment.StudentID = *req.StudentID
	}
	if req.Amount != nil {
		payment.Amount = *req.Amount
	}
	if req.Status != nil {
		payment.Status = *req.Status
	}
	if req.Description != nil {
		payment.Description = *req.Description
	}
	if req.PaymentDate != nil {
		payment.PaymentDate = req.PaymentDate.UTC()
	}
	if err := s.repo.Update(ctx, &payment); err != nil {
		return nil, writeError(err, "student does not exist", "failed to update payment")
	}
	s.cache.InvalidateAggregates(ctx)
	return &payment, nil
}

// Delete removes a payment.
func (s *PaymentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupError(err, "payment not found", "failed to delete payment")
	}
	s.cache.InvalidateAggregates(ctx)
	return nil
}
