package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", ErrInvalidDateRange, http.StatusBadRequest},
		{"unauthenticated", ErrInvalidCredentials, http.StatusUnauthorized},
		{"authorization", ErrNotAuthorized, http.StatusForbidden},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"conflict", ErrDateRangeUnavailable, http.StatusConflict},
		{"store", Store(errors.New("connection reset")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped sentinel", fmt.Errorf("confirm: %w", ErrConflictingConfirmedReservation), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Status(tt.err))
		})
	}
}

func TestWithMessage_StillMatchesSentinel(t *testing.T) {
	err := ErrMissingField.WithMessage("Missing field: check_in")

	assert.ErrorIs(t, err, ErrMissingField)
	assert.NotErrorIs(t, err, ErrInvalidDateFormat)
	assert.Equal(t, "Missing field: check_in", err.Error())
	assert.Equal(t, "Missing required fields", ErrMissingField.Message)
}

func TestStore(t *testing.T) {
	cause := errors.New("duplicate key")

	wrapped := Store(cause)
	assert.ErrorIs(t, wrapped, ErrStore)
	assert.ErrorIs(t, wrapped, cause)

	assert.Same(t, ErrNotFound, Store(ErrNotFound))
	assert.Nil(t, Store(nil))
}

func TestBody_HidesStoreCause(t *testing.T) {
	message, code := Body(Store(errors.New("pq: password authentication failed")))
	assert.Equal(t, "Internal error", message)
	assert.Equal(t, "store_error", code)

	message, code = Body(ErrEmptyMessage)
	assert.Equal(t, ErrEmptyMessage.Message, message)
	assert.Equal(t, "empty_message", code)
}
