package service

import (
	"fmt"

	"github.com/tuanvumaihuynh/crm/internal/apperr"
	"github.com/tuanvumaihuynh/crm/pkg/validator"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// validateParams runs the struct tag rules of params and converts rule
// failures into apperr.ValidationErr.
func validateParams(v validator.Validator, params any) error {
	if err := v.Validate(params); err != nil {
		if validator.IsValidationError(err) {
			return apperr.NewValidationErr(err)
		}
		return fmt.Errorf("validate params: %w", err)
	}
	return nil
}

func pageSize(limit uint64) uint64 {
	if limit == 0 {
		return DefaultPageSize
	}
	return min(limit, MaxPageSize)
}
