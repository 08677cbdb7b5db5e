package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidateRequired checks if a string field is not empty
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(fmt.Sprintf("%s is required", fieldName))
	}
	return nil
}

// ValidatePositive checks if an amount is positive
func ValidatePositive(value decimal.Decimal, fieldName string) error {
	if !value.IsPositive() {
		return NewValidationError(fmt.Sprintf("%s must be positive", fieldName))
	}
	return nil
}

// ValidateNonNegative checks if an amount is non-negative
func ValidateNonNegative(value decimal.Decimal, fieldName string) error {
	if value.IsNegative() {
		return NewValidationError(fmt.Sprintf("%s cannot be negative", fieldName))
	}
	return nil
}

// ValidateNotEmpty checks if a slice is not empty
func ValidateNotEmpty[T any](slice []T, fieldName string) error {
	if len(slice) == 0 {
		return NewValidationError(fmt.Sprintf("%s cannot be empty", fieldName))
	}
	return nil
}

// ValidateRosterNames validates that all roster names are non-empty and distinct
func ValidateRosterNames(names []string) error {
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return NewValidationError(fmt.Sprintf("roster entry %d name cannot be empty", i+1))
		}
		key := NormalizeName(name)
		if seen[key] {
			return NewValidationError(fmt.Sprintf("roster entry %q is duplicated", name))
		}
		seen[key] = true
	}
	return nil
}
