package util

import (
	"fmt"
	"os"
)

// ValidationError represents a field validation failure.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateRequired checks that a string field is not empty.
func ValidateRequired(field, value string) *ValidationError {
	if value == "" {
		return &ValidationError{Field: field, Message: fmt.Sprintf("%s is required", field)}
	}
	return nil
}

// ValidateRange checks that an integer is within bounds.
func ValidateRange(field string, value, minVal, maxVal int) *ValidationError {
	if value < minVal || value > maxVal {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s must be between %d and %d, got %d", field, minVal, maxVal, value),
		}
	}
	return nil
}

// ValidateLess checks that lo is strictly below hi.
func ValidateLess(field string, lo, hi int) *ValidationError {
	if lo >= hi {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s must be lower than %d, got %d", field, hi, lo),
		}
	}
	return nil
}

// ValidateFile checks that path names an existing regular file.
func ValidateFile(field, path string) *ValidationError {
	if err := ValidateRequired(field, path); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return &ValidationError{Field: field, Message: fmt.Sprintf("%s not found: %s", field, path)}
	}
	return nil
}

// IsConfigured returns true if all provided values are non-empty.
func IsConfigured(values ...string) bool {
	for _, v := range values {
		if v == "" {
			return false
		}
	}
	return true
}
