package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind   Kind
		status int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindInternal, http.StatusInternalServerError},
		{Kind("SOMETHING_ELSE"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, HTTPStatus(tt.kind), string(tt.kind))
	}
}

func TestAs_ThroughWrapping(t *testing.T) {
	base := NotFound("Member not found")
	wrapped := fmt.Errorf("lookup: %w", base)

	got, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindNotFound, got.Kind)
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(wrapped, KindConflict))

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

func TestInternal_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause, "Internal Server Error")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Internal Server Error: connection reset", err.Error())
}

func TestWithDetails_LeavesSentinelUntouched(t *testing.T) {
	sentinel := Validation("Invalid leave type")
	withDetails := sentinel.WithDetails(map[string]string{"type": "must be one of: sick"})

	assert.Nil(t, sentinel.Details)
	assert.Equal(t, "must be one of: sick", withDetails.Details["type"])
	assert.Equal(t, sentinel.Message, withDetails.Message)
}
