package apierr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/crm/internal/apperr"
	"github.com/tuanvumaihuynh/crm/internal/http/apierr"
	"github.com/tuanvumaihuynh/crm/pkg/validator"
	"github.com/tuanvumaihuynh/crm/pkg/zerror"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "Should map not found", err: apperr.CustomerNotFoundErr, status: http.StatusNotFound, code: apperr.CustomerNotFoundCode},
		{name: "Should map conflict", err: apperr.NewEmailAlreadyExistsErr("a@b.co"), status: http.StatusConflict, code: apperr.EmailAlreadyExistsCode},
		{name: "Should map unprocessable entity", err: apperr.OrderProductsRequiredErr, status: http.StatusUnprocessableEntity, code: apperr.OrderProductsRequiredCode},
		{name: "Should map wrapped zerror", err: fmt.Errorf("db with tx: %w", apperr.ProductsNotFoundErr), status: http.StatusNotFound, code: apperr.ProductsNotFoundCode},
		{name: "Should hide unknown errors", err: errors.New("connection refused"), status: http.StatusInternalServerError, code: "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := apierr.New(tt.err)

			assert.Equal(t, tt.status, res.StatusCode)
			assert.Equal(t, tt.code, res.Code)
			assert.NotContains(t, res.Message, "connection refused")
		})
	}

	t.Run("Should include field details of validation errors", func(t *testing.T) {
		type params struct {
			Phone string `json:"phone" validate:"phone"`
		}
		err := validator.MustNewDefaultValidator().Validate(params{Phone: "x"})
		require.Error(t, err)

		res := apierr.New(apperr.NewValidationErr(err))

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, apperr.ValidationErrorCode, res.Code)
		assert.Equal(t, []apierr.FieldError{{Field: "phone", Message: "must be in the format +1234567890 or 123-456-7890"}}, res.Details)
	})
}

func TestZErrorStatusToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, apierr.ZErrorStatusToHTTPStatus(zerror.StatusValidationFailed))
	assert.Equal(t, http.StatusGatewayTimeout, apierr.ZErrorStatusToHTTPStatus(zerror.StatusTimeout))
	assert.Equal(t, http.StatusInternalServerError, apierr.ZErrorStatusToHTTPStatus(zerror.Status(200)))
}
