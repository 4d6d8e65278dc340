package service

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/pkg/database"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

// NewValidator returns a validator with the domain enum tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	registerDomainValidations(v)
	return v
}

// registerDomainValidations is idempotent so services can call it on injected validators.
func registerDomainValidations(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("section", func(fl validator.FieldLevel) bool {
		return models.Section(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("payment_status", func(fl validator.FieldLevel) bool {
		return models.PaymentStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("employee_role", func(fl validator.FieldLevel) bool {
		return models.EmployeeRole(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("shift", func(fl validator.FieldLevel) bool {
		switch models.Shift(fl.Field().String()) {
		case models.ShiftMorning, models.ShiftAfternoon, models.ShiftEvening:
			return true
		default:
			return false
		}
	})
}

// jsonFieldName reports fields under their JSON names so error details match the payload.
func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	default:
		return name
	}
}

func ensureValidator(v *validator.Validate) *validator.Validate {
	if v == nil {
		return NewValidator()
	}
	registerDomainValidations(v)
	return v
}

// validationError lists the offending fields when err comes from the validator.
func validationError(err error, message string) error {
	appErr := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			appErr.Details = append(appErr.Details, appErrors.FieldError{Field: fe.Field(), Rule: fe.Tag()})
		}
	}
	return appErr
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// lookupError maps a repository read error to 404 or 500.
func lookupError(err error, notFound, failure string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return internalError(err, failure)
}

// writeError maps a repository write error, translating foreign key violations into validation failures.
func writeError(err error, reference, failure string) error {
	if database.IsForeignKeyViolation(err) {
		return validationError(err, reference)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, failure)
	}
	return internalError(err, failure)
}

type existenceChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// requireStudent returns a validation error when the referenced student is missing.
func requireStudent(ctx context.Context, students existenceChecker, id string) error {
	ok, err := students.Exists(ctx, id)
	if err != nil {
		return internalError(err, "failed to verify student")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrValidation, "student does not exist")
	}
	return nil
}
