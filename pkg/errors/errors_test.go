package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHttpErrorKinds(t *testing.T) {
	cases := []struct {
		name  string
		err   *HttpError
		code  int
		check func(error) bool
	}{
		{"validation", NewValidationError("bad input"), http.StatusBadRequest, IsValidation},
		{"not found", NewNotFoundError("missing"), http.StatusNotFound, IsNotFound},
		{"not eligible", NewNotEligibleError("inactive"), http.StatusUnprocessableEntity, IsNotEligible},
		{"conflict", NewConflictError("duplicate active loan"), http.StatusConflict, IsConflict},
		{"storage", NewStorageError(errors.New("boom")), http.StatusInternalServerError, IsStorage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code)
			assert.True(t, tc.check(tc.err))
		})
	}
}

func TestHttpErrorUnwrap(t *testing.T) {
	inner := errors.New("connection reset")
	err := NewStorageError(inner)

	assert.ErrorIs(t, err, inner)
	assert.ErrorIs(t, fmt.Errorf("query failed: %w", err), inner)
}

func TestKindChecksRejectOtherKinds(t *testing.T) {
	err := NewConflictError("device unavailable: %s", "maintenance")

	assert.True(t, IsConflict(err))
	assert.False(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.Contains(t, err.Error(), "device unavailable: maintenance")
}

func TestKindChecksOnPlainErrors(t *testing.T) {
	plain := errors.New("plain")
	assert.False(t, IsConflict(plain))
	assert.False(t, IsStorage(plain))
}
