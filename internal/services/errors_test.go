package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ErrNotFound("x"), 404},
		{ErrBadRequest("x"), 400},
		{ErrValidation([]FieldError{{Field: "f", Message: "m"}}), 400},
		{ErrForbidden("x"), 403},
		{ErrUnauthorized("x"), 401},
		{ErrConflict("x"), 400},
	}
	for _, tc := range cases {
		serviceErr, ok := AsServiceError(tc.err)
		require.True(t, ok)
		assert.Equal(t, tc.status, serviceErr.Status)
	}
}

func TestValidationErrorCarriesFields(t *testing.T) {
	err := ErrValidation([]FieldError{
		{Field: "type", Message: "type must be valid"},
		{Field: "location", Message: "Location is required"},
	})
	serviceErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Len(t, serviceErr.Fields, 2)
	assert.Equal(t, "Validation failed", serviceErr.Message)
}

func TestAsServiceErrorUnwraps(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrNotFound("Alert not found"))
	serviceErr, ok := AsServiceError(wrapped)
	require.True(t, ok)
	assert.Equal(t, 404, serviceErr.Status)
	assert.Equal(t, "Alert not found", serviceErr.Message)

	_, ok = AsServiceError(errors.New("plain"))
	assert.False(t, ok)
}
