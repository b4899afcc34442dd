package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyaivault/backend/apperror"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperror.Validation("bad input"), http.StatusBadRequest},
		{apperror.Conflict("duplicate email"), http.StatusBadRequest},
		{apperror.Authentication("bad token"), http.StatusUnauthorized},
		{apperror.Forbidden("not yours"), http.StatusForbidden},
		{apperror.NotFound("PDF"), http.StatusNotFound},
		{errors.New("disk exploded"), http.StatusInternalServerError},
		// Wrapped errors still map through the chain.
		{fmt.Errorf("rating pdf: %w", apperror.NotFound("PDF")), http.StatusNotFound},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorStatus(tt.err), "error %v", tt.err)
	}
}

func TestWriteError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, apperror.Forbidden("Unauthorized to delete this PDF"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Unauthorized to delete this PDF", body.Message)
}

func TestWriteError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("mongo: connection refused at 10.0.0.3:27017"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body.Message)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
}
