package customvalidator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ciPayload struct {
	CI string `validate:"required,numeric_ci"`
}

type statePayload struct {
	State string `validate:"required,device_state"`
}

func newTestValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	require.NoError(t, RegisterCustomValidations(v))
	return v
}

func TestNumericCI(t *testing.T) {
	v := newTestValidator(t)

	assert.NoError(t, v.Struct(ciPayload{CI: "12345678"}))
	assert.Error(t, v.Struct(ciPayload{CI: "12345678A"}))
	assert.Error(t, v.Struct(ciPayload{CI: "12 345"}))
	assert.Error(t, v.Struct(ciPayload{CI: ""}))
}

func TestDeviceState(t *testing.T) {
	v := newTestValidator(t)

	for _, state := range []string{"available", "loaned", "maintenance", "retired"} {
		assert.NoError(t, v.Struct(statePayload{State: state}), state)
	}
	assert.Error(t, v.Struct(statePayload{State: "broken"}))
	assert.Error(t, v.Struct(statePayload{State: "Available"}))
}
