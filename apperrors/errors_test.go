package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrappedKinds(t *testing.T) {
	err := Conflict("job %s is %s", "abc", "completed")
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, "conflict: job abc is completed", err.Error())

	wrapped := fmt.Errorf("submit bid: %w", Forbidden("banned"))
	assert.True(t, errors.Is(wrapped, ErrForbidden))
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("register: %w", NewValidationError(
		FieldError{Field: "email", Message: "must be a valid email"},
		FieldError{Field: "username", Message: "is required"},
	))

	assert.True(t, IsValidation(err))
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, map[string]string{
		"email":    "must be a valid email",
		"username": "is required",
	}, ve.FieldMap())
	assert.Equal(t, "validation failed: email: must be a valid email; username: is required", ve.Error())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 422, HTTPStatus(Invalid("rating", "must be at most 5")))
	assert.Equal(t, 401, HTTPStatus(Unauthenticated("no token")))
	assert.Equal(t, 403, HTTPStatus(Forbidden("banned")))
	assert.Equal(t, 404, HTTPStatus(NotFound("job")))
	assert.Equal(t, 409, HTTPStatus(fmt.Errorf("wrap: %w", Conflict("closed"))))
	assert.Equal(t, 500, HTTPStatus(errors.New("db down")))
}
