package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	t.Run("without underlying error", func(t *testing.T) {
		err := InvalidInput("dealId is required")
		assert.Equal(t, "INVALID_INPUT: dealId is required", err.Error())
	})

	t.Run("with underlying error", func(t *testing.T) {
		err := Database(fmt.Errorf("connection refused"))
		assert.Contains(t, err.Error(), "DATABASE_ERROR")
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("boom")
	err := ExternalAPI("hubspot", inner)

	require.ErrorIs(t, err, inner)
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		statusCode int
	}{
		{"not found", NotFound("candidate"), CodeNotFound, http.StatusNotFound},
		{"invalid input", InvalidInput("bad"), CodeInvalidInput, http.StatusBadRequest},
		{"database", Database(fmt.Errorf("x")), CodeDatabase, http.StatusInternalServerError},
		{"external api", ExternalAPI("pinecone", fmt.Errorf("x")), CodeExternalAPI, http.StatusBadGateway},
		{"unauthorized", Unauthorized(""), CodeUnauthorized, http.StatusUnauthorized},
		{"rate limited", RateLimited(), CodeRateLimited, http.StatusTooManyRequests},
		{"conflict", Conflict("exists"), CodeConflict, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.statusCode, tt.err.StatusCode)
		})
	}
}

func TestGetStatusCode(t *testing.T) {
	t.Run("app error", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, GetStatusCode(NotFound("role")))
	})

	t.Run("wrapped app error", func(t *testing.T) {
		wrapped := fmt.Errorf("outer: %w", NotFound("role"))
		assert.Equal(t, http.StatusNotFound, GetStatusCode(wrapped))
	})

	t.Run("plain error defaults to 500", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, GetStatusCode(fmt.Errorf("plain")))
	})
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("deal")))
	assert.False(t, IsNotFound(InvalidInput("x")))
	assert.True(t, IsInvalidInput(InvalidInput("x")))
	assert.True(t, IsUnauthorized(Unauthorized("")))
	assert.True(t, IsRateLimited(RateLimited()))
	assert.False(t, IsRateLimited(fmt.Errorf("plain")))
}

func TestWithDetail(t *testing.T) {
	err := InvalidInput("validation failed").WithDetail("field", "email")
	assert.Equal(t, "email", err.Details["field"])
}
