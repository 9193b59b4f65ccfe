package apperr

import (
	"errors"
	"fmt"
	"strings"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/crm/pkg/validator"
	"github.com/tuanvumaihuynh/crm/pkg/zerror"
)

const (
	ValidationErrorCode       = "VALIDATION_FAILED"
	EmailAlreadyExistsCode    = "EMAIL_ALREADY_EXISTS"
	CustomerNotFoundCode      = "CUSTOMER_NOT_FOUND"
	ProductsNotFoundCode      = "PRODUCTS_NOT_FOUND"
	OrderNotFoundCode         = "ORDER_NOT_FOUND"
	OrderProductsRequiredCode = "ORDER_PRODUCTS_REQUIRED"
)

var (
	ValidationErr            = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	EmailAlreadyExistsErr    = zerror.NewConflict(EmailAlreadyExistsCode, "Email already exists.")
	CustomerNotFoundErr      = zerror.NewNotFound(CustomerNotFoundCode, "Invalid customer ID.")
	ProductsNotFoundErr      = zerror.NewNotFound(ProductsNotFoundCode, "Invalid product IDs provided.")
	SomeProductsNotFoundErr  = zerror.NewNotFound(ProductsNotFoundCode, "Some product IDs are invalid.")
	OrderNotFoundErr         = zerror.NewNotFound(OrderNotFoundCode, "Order not found.")
	OrderProductsRequiredErr = zerror.NewUnprocessableEntity(OrderProductsRequiredCode, "At least one product is required.")
)

// NewValidationErr converts a validator error into ValidationErr whose message
// lists every failing field, e.g. "phone: must be in the format ...".
func NewValidationErr(err error) zerror.ZError {
	var validationErrs govalidator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return ValidationErr.WrapParent(err)
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), validator.ValidationErrorMessage(fe)))
	}

	return ValidationErr.
		WithMsg(strings.Join(msgs, "; ")).
		WrapParent(err)
}

// NewOrderTotalTooLargeErr reports an order whose total cannot be stored.
func NewOrderTotalTooLargeErr(total, limit decimal.Decimal) zerror.ZError {
	return ValidationErr.WithMsgf("total_amount: %s must be less than %s", total.StringFixed(2), limit.String())
}

// NewEmailAlreadyExistsErr reports the offending address in the message.
func NewEmailAlreadyExistsErr(email string) zerror.ZError {
	return EmailAlreadyExistsErr.WithMsgf("Email %s already exists.", email)
}

// Message returns the user facing message of err. Errors that are not a
// ZError are reported with a generic message so internals do not leak.
func Message(err error) string {
	var zErr zerror.ZError
	if errors.As(err, &zErr) {
		return zErr.Msg()
	}
	return "an unknown error occurred"
}
