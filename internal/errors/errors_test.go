package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haseeb5i/socket-task/internal/domain"
)

func TestValidationError(t *testing.T) {
	err := ValidationError("invalid schedule")

	assert.Equal(t, TypeValidation, err.Type)
	assert.Equal(t, "invalid schedule", err.Message)
	assert.Nil(t, err.Cause)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
	assert.Contains(t, err.Error(), "validation")
	assert.Contains(t, err.Error(), "invalid schedule")
}

func TestNotFoundError(t *testing.T) {
	err := NotFoundError("session not found")

	assert.Equal(t, TypeNotFound, err.Type)
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus())
}

func TestUnauthorizedAndForbidden(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, UnauthorizedError("no token").HTTPStatus())
	assert.Equal(t, http.StatusForbidden, ForbiddenError("admin only").HTTPStatus())
}

func TestUnsupportedError(t *testing.T) {
	err := UnsupportedError("session update is not supported")

	assert.Equal(t, TypeUnsupported, err.Type)
	assert.Equal(t, http.StatusNotImplemented, err.HTTPStatus())
}

func TestInternalError(t *testing.T) {
	cause := fmt.Errorf("token signing failed")
	err := InternalError("failed to issue token", cause)

	assert.Equal(t, TypeInternal, err.Type)
	assert.Equal(t, cause, err.Cause)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
	assert.Contains(t, err.Error(), "token signing failed")
}

func TestExternalError(t *testing.T) {
	err := ExternalError("reward dispatch failed", fmt.Errorf("signer unreachable"))

	assert.Equal(t, TypeExternal, err.Type)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus())
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := InternalError("wrapper", cause)

	assert.ErrorIs(t, err, cause)
}

func TestWithContext(t *testing.T) {
	err := ValidationError("bad input").
		WithContext("session_id", "abc").
		WithField("task", 2)

	assert.Equal(t, "abc", err.Context["session_id"])
	assert.Equal(t, 2, err.Context["task"])
}

func TestToResponse(t *testing.T) {
	err := ValidationError("bad input").WithField("task", 1)
	resp := err.ToResponse()

	assert.Equal(t, "bad input", resp.Error)
	assert.Equal(t, TypeValidation, resp.Type)
	assert.Equal(t, 1, resp.Context["task"])
}

func TestAsStructuredError_PassThrough(t *testing.T) {
	original := NotFoundError("gone")
	assert.Same(t, original, AsStructuredError(original))
	assert.Nil(t, AsStructuredError(nil))
}

func TestAsStructuredError_DomainSentinels(t *testing.T) {
	cases := []struct {
		err      error
		expected ErrorType
	}{
		{domain.ErrInvalidSchedule, TypeValidation},
		{fmt.Errorf("%w: start time must be in the future", domain.ErrInvalidSchedule), TypeValidation},
		{domain.ErrSessionNotFound, TypeNotFound},
		{domain.ErrUpdateUnsupported, TypeUnsupported},
	}

	for _, tc := range cases {
		structured := AsStructuredError(tc.err)
		require.NotNil(t, structured)
		assert.Equal(t, tc.expected, structured.Type, "for %v", tc.err)
	}
}

func TestAsStructuredError_UnknownBecomesInternal(t *testing.T) {
	structured := AsStructuredError(errors.New("boom"))

	assert.Equal(t, TypeInternal, structured.Type)
	assert.Equal(t, "internal server error", structured.Message)
}
