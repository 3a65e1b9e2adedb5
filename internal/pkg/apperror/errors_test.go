package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name: "without wrapped error",
			err: &AppError{
				Code:    CodeNotFound,
				Message: "user 42 not found",
			},
			expected: "NOT_FOUND: user 42 not found",
		},
		{
			name: "with wrapped error",
			err: &AppError{
				Code:    CodeInternal,
				Message: "database error",
				Err:     errors.New("connection refused"),
			},
			expected: "INTERNAL_ERROR: database error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	wrappedErr := errors.New("original error")
	appErr := &AppError{
		Code:    CodeInternal,
		Message: "wrapped",
		Err:     wrappedErr,
	}

	assert.Equal(t, wrappedErr, appErr.Unwrap())
	assert.True(t, errors.Is(appErr, wrappedErr))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"validation", Validation("password too short"), CodeValidation, http.StatusBadRequest},
		{"bad request", BadRequest("invalid JSON"), CodeBadRequest, http.StatusBadRequest},
		{"unauthorized", Unauthorized("invalid token"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("insufficient role"), CodeForbidden, http.StatusForbidden},
		{"deactivated", Deactivated(), CodeDeactivated, http.StatusForbidden},
		{"not found", NotFound("user", 123), CodeNotFound, http.StatusNotFound},
		{"conflict", Conflict("email already registered"), CodeConflict, http.StatusConflict},
		{"too many requests", TooManyRequests("too many login attempts"), CodeTooMany, http.StatusTooManyRequests},
		{"internal", Internal("boom", errors.New("cause")), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestUnauthorized_DefaultMessage(t *testing.T) {
	assert.Equal(t, "authentication required", Unauthorized("").Message)
	assert.Equal(t, "session expired", Unauthorized("session expired").Message)
}

func TestForbidden_DefaultMessage(t *testing.T) {
	assert.Equal(t, "access denied", Forbidden("").Message)
}

func TestNotFound_Message(t *testing.T) {
	appErr := NotFound("user", 123)
	assert.Equal(t, "user 123 not found", appErr.Message)
}

func TestDeactivated_DistinctFromUnauthorized(t *testing.T) {
	deactivated := Deactivated()
	unauthorized := Unauthorized("")

	assert.NotEqual(t, unauthorized.Code, deactivated.Code)
	assert.Equal(t, http.StatusForbidden, deactivated.HTTPStatus)
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     string
		expected bool
	}{
		{
			name:     "matching code",
			err:      Conflict("email already registered"),
			code:     CodeConflict,
			expected: true,
		},
		{
			name:     "wrapped matching code",
			err:      fmt.Errorf("register: %w", Conflict("email already registered")),
			code:     CodeConflict,
			expected: true,
		},
		{
			name:     "different code",
			err:      Conflict("email already registered"),
			code:     CodeNotFound,
			expected: false,
		},
		{
			name:     "not an AppError",
			err:      errors.New("regular error"),
			code:     CodeInternal,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     CodeInternal,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Is(tt.err, tt.code))
		})
	}
}

func TestAsAppError(t *testing.T) {
	t.Run("direct AppError", func(t *testing.T) {
		original := NotFound("user", 1)
		result, ok := AsAppError(original)

		require.True(t, ok)
		assert.Equal(t, original, result)
	})

	t.Run("wrapped AppError", func(t *testing.T) {
		original := NotFound("user", 1)
		wrapped := fmt.Errorf("wrapped: %w", original)
		result, ok := AsAppError(wrapped)

		require.True(t, ok)
		assert.Equal(t, original, result)
	})

	t.Run("not AppError", func(t *testing.T) {
		result, ok := AsAppError(errors.New("regular error"))

		assert.False(t, ok)
		assert.Nil(t, result)
	})

	t.Run("nil error", func(t *testing.T) {
		result, ok := AsAppError(nil)

		assert.False(t, ok)
		assert.Nil(t, result)
	})
}

func TestFromError(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Nil(t, FromError(nil))
	})

	t.Run("already AppError", func(t *testing.T) {
		original := NotFound("user", 1)
		assert.Equal(t, original, FromError(original))
	})

	t.Run("regular error", func(t *testing.T) {
		regularErr := errors.New("something went wrong")
		result := FromError(regularErr)

		assert.Equal(t, CodeInternal, result.Code)
		assert.Equal(t, "an unexpected error occurred", result.Message)
		assert.Equal(t, http.StatusInternalServerError, result.HTTPStatus)
		assert.Equal(t, regularErr, result.Err)
	})

	t.Run("wrapped AppError", func(t *testing.T) {
		original := Unauthorized("token expired")
		wrapped := fmt.Errorf("auth failed: %w", original)

		assert.Equal(t, original, FromError(wrapped))
	})
}

func TestErrorCodes(t *testing.T) {
	assert.Equal(t, "VALIDATION_ERROR", CodeValidation)
	assert.Equal(t, "BAD_REQUEST", CodeBadRequest)
	assert.Equal(t, "UNAUTHORIZED", CodeUnauthorized)
	assert.Equal(t, "FORBIDDEN", CodeForbidden)
	assert.Equal(t, "ACCOUNT_DEACTIVATED", CodeDeactivated)
	assert.Equal(t, "NOT_FOUND", CodeNotFound)
	assert.Equal(t, "CONFLICT", CodeConflict)
	assert.Equal(t, "TOO_MANY_REQUESTS", CodeTooMany)
	assert.Equal(t, "INTERNAL_ERROR", CodeInternal)
}
