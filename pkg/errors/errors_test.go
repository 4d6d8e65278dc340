package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneDoesNotMutatePredefined(t *testing.T) {
	clone := Clone(ErrNotFound, "student not found")
	assert.Equal(t, "student not found", clone.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
	assert.Equal(t, http.StatusNotFound, clone.Status)

	same := Clone(ErrForbidden, "")
	assert.Equal(t, ErrForbidden.Message, same.Message)
	assert.Nil(t, Clone(nil, "x"))
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(sql.ErrConnDone, ErrInternal.Code, ErrInternal.Status, "failed to list students")
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.Equal(t, "failed to list students: "+sql.ErrConnDone.Error(), err.Error())
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	typed := Clone(ErrValidation, "name is required")
	wrapped := fmt.Errorf("create: %w", typed)
	assert.Same(t, typed, FromError(wrapped))

	plain := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.Status)
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode(fmt.Errorf("x: %w", ErrNotConfigured), "NOT_CONFIGURED"))
	assert.False(t, IsCode(errors.New("NOT_CONFIGURED"), "NOT_CONFIGURED"))

	var nilErr *Error
	assert.Equal(t, "<nil>", nilErr.Error())
}

func TestIsMatchesByCode(t *testing.T) {
	clone := Clone(ErrNotFound, "exam not found")
	assert.ErrorIs(t, fmt.Errorf("load: %w", clone), ErrNotFound)
	assert.NotErrorIs(t, clone, ErrForbidden)
}

func TestCloneCopiesDetails(t *testing.T) {
	base := &Error{Code: "VALIDATION_ERROR", Status: http.StatusBadRequest, Details: []FieldError{{Field: "firstName", Rule: "required"}}}
	clone := Clone(base, "")
	clone.Details[0].Field = "lastName"
	assert.Equal(t, "firstName", base.Details[0].Field)
}
