package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quipus-system/pkg/customvalidator"
	apperrors "quipus-system/pkg/errors"
)

type registerStudentPayload struct {
	FirstNames string `validate:"required"`
	NationalID string `validate:"required,numeric_ci"`
}

func newTestValidator(t *testing.T) *CustomValidator {
	t.Helper()
	v := validator.New()
	require.NoError(t, customvalidator.RegisterCustomValidations(v))
	return NewValidator(v)
}

func TestValidate_TagFailureIsValidationError(t *testing.T) {
	cv := newTestValidator(t)

	err := cv.Validate(registerStudentPayload{
		FirstNames: "Maria Elena",
		NationalID: "12A45678",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	assert.Contains(t, httpErr.Details, "NationalID")
}

func TestValidate_MissingRequiredFieldIsValidationError(t *testing.T) {
	cv := newTestValidator(t)

	err := cv.Validate(registerStudentPayload{NationalID: "12345678"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestValidate_ValidPayloadPasses(t *testing.T) {
	cv := newTestValidator(t)

	assert.NoError(t, cv.Validate(registerStudentPayload{
		FirstNames: "Maria Elena",
		NationalID: "12345678",
	}))
}

func TestErrorResponse_ValidationFailureMapsTo400(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/students", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	cv := newTestValidator(t)
	vErr := cv.Validate(registerStudentPayload{NationalID: "not-numeric"})
	require.Error(t, vErr)

	require.NoError(t, ErrorResponse(ctx, vErr, zap.NewNop()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body HttpResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Status)
	assert.Equal(t, "validation failed", body.Message)
}
