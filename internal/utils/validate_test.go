package utils

import (
	"testing"

	"resorthub/internal/apperror"

	"github.com/stretchr/testify/assert"
)

type signupInput struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Age      int    `json:"age"      validate:"gte=0"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name     string
		input    signupInput
		wantErr  *apperror.Error
		wantText string
	}{
		{name: "valid", input: signupInput{Username: "jane", Email: "jane@example.com"}},
		{
			name:     "missing username",
			input:    signupInput{},
			wantErr:  apperror.ErrMissingField,
			wantText: "username is required",
		},
		{
			name:     "short username",
			input:    signupInput{Username: "jo"},
			wantErr:  apperror.ErrInvalidInput,
			wantText: "username must be at least 3 characters",
		},
		{
			name:     "bad email",
			input:    signupInput{Username: "jane", Email: "nope"},
			wantErr:  apperror.ErrInvalidInput,
			wantText: "email must be a valid email address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			message, _ := apperror.Body(err)
			assert.Equal(t, tt.wantText, message)
		})
	}
}
