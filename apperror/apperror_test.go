package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelClassification(t *testing.T) {
	tests := []struct {
		err      *AppError
		sentinel error
	}{
		{Validation("bad"), ErrValidation},
		{Authentication("bad token"), ErrAuthentication},
		{Forbidden("no"), ErrForbidden},
		{NotFound("PDF"), ErrNotFound},
		{Conflict("duplicate"), ErrConflict},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, tt.err, tt.sentinel)
	}
}

func TestWrappingSurvivesFmtErrorf(t *testing.T) {
	base := NotFound("User")
	wrapped := fmt.Errorf("resolving comment author: %w", base)

	assert.ErrorIs(t, wrapped, ErrNotFound)

	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, "User not found", appErr.Message)
}
