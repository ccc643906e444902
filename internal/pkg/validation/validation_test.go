package validation

import (
	"testing"

	"churchflow-backend/internal/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleBody struct {
	Email  string `json:"email" validate:"required,email"`
	Reason string `json:"reason" validate:"required,oneof=transfer relocation personal other"`
	Name   string `json:"name" validate:"notblank"`
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("pastor@grace.org"))
	assert.False(t, IsValidEmail("pastor@grace"))
	assert.False(t, IsValidEmail("pastor grace@x.org"))
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(&sampleBody{Email: "a@b.co", Reason: "transfer", Name: "x"}, "Missing required fields")
	assert.NoError(t, err)
}

func TestStruct_DetailsKeyedByJSONName(t *testing.T) {
	err := Struct(&sampleBody{Email: "nope", Reason: "vacation", Name: "   "}, "Missing required fields")
	require.Error(t, err)

	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Equal(t, "Missing required fields", ae.Message)
	assert.Equal(t, "must be a valid email", ae.Details["email"])
	assert.Equal(t, "must be one of: transfer, relocation, personal, other", ae.Details["reason"])
	assert.Equal(t, "is required", ae.Details["name"])
}

func TestVar(t *testing.T) {
	assert.True(t, Var("sick", "oneof=sick personal vacation"))
	assert.False(t, Var("holiday", "oneof=sick personal vacation"))
}

func TestDecodeJSON(t *testing.T) {
	var in struct {
		Name string `json:"name"`
	}
	require.NoError(t, DecodeJSON(nil, &in))
	assert.Empty(t, in.Name)

	require.NoError(t, DecodeJSON([]byte(`{"name":"Grace"}`), &in))
	assert.Equal(t, "Grace", in.Name)

	assert.ErrorIs(t, DecodeJSON([]byte(`{"name":`), &in), ErrInvalidBody)
	assert.ErrorIs(t, DecodeJSON([]byte(`[1,2]`), &in), ErrInvalidBody)
}
