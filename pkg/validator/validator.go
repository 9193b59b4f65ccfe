package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// PhoneRegex accepts +<7-15 digits> (plus sign optional) or ###-###-####.
var PhoneRegex = regexp.MustCompile(`^(\+?\d{7,15}|\d{3}-\d{3}-\d{4})$`)

// Validator is a validator that validates the given struct.
type Validator interface {
	// Validate validates the given struct
	Validate(s any) error
}

type DefaultValidator struct {
	v *validator.Validate
}

// NewDefaultValidator creates a new default validator.
// It returns a new DefaultValidator and an error if the validator registration fails.
func NewDefaultValidator() (*DefaultValidator, error) {
	v := validator.New()

	v.RegisterTagNameFunc(jsonTagName)

	// Decimals are validated through their string form, otherwise the validator
	// walks into the unexported struct fields and skips the tags.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	validations := map[string]validator.Func{
		"phone":  validatePhone,
		"dgt":    validateDecimalGreaterThan,
		"dlt":    validateDecimalLessThan,
		"dscale": validateDecimalScale,
	}
	for tag, fn := range validations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register %s validator: %w", tag, err)
		}
	}

	return &DefaultValidator{v: v}, nil
}

// MustNewDefaultValidator is like NewDefaultValidator but panics on registration errors.
func MustNewDefaultValidator() *DefaultValidator {
	v, err := NewDefaultValidator()
	if err != nil {
		panic(err)
	}
	return v
}

func (v DefaultValidator) Validate(s any) error {
	return v.v.Struct(s)
}

// IsValidationError checks if the given error is a validation error
func IsValidationError(err error) bool {
	var validationErrs validator.ValidationErrors
	return errors.As(err, &validationErrs)
}

func ValidationErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "phone":
		return "must be in the format +1234567890 or 123-456-7890"
	case "dgt":
		if fe.Param() == "0" {
			return "must be positive"
		}
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "dlt":
		return fmt.Sprintf("must be less than %s", fe.Param())
	case "dscale":
		return fmt.Sprintf("must have at most %s decimal places", fe.Param())
	default:
		return "is invalid"
	}
}

func jsonTagName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	default:
		return name
	}
}

func validatePhone(fl validator.FieldLevel) bool {
	return PhoneRegex.MatchString(fl.Field().String())
}

func validateDecimalGreaterThan(fl validator.FieldLevel) bool {
	d, bound, ok := decimalAndParam(fl)
	return ok && d.GreaterThan(bound)
}

func validateDecimalLessThan(fl validator.FieldLevel) bool {
	d, bound, ok := decimalAndParam(fl)
	return ok && d.LessThan(bound)
}

func decimalAndParam(fl validator.FieldLevel) (decimal.Decimal, decimal.Decimal, bool) {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, false
	}

	bound, err := decimal.NewFromString(fl.Param())
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, false
	}

	return d, bound, true
}

func validateDecimalScale(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}

	places, err := strconv.ParseInt(fl.Param(), 10, 32)
	if err != nil {
		return false
	}

	// Round only drops digits, so an unchanged value has at most `places` decimals.
	return d.Equal(d.Round(int32(places)))
}
