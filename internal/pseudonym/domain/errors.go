// Package domain defines result models and errors for pseudonymization.
package domain

import (
	"github.com/allisson/pseudonymizer/internal/errors"
)

// Pseudonymization-specific error definitions.
var (
	// ErrMissingCustomerID indicates the record lacks the mandatory customer_id field.
	ErrMissingCustomerID = errors.Wrap(errors.ErrInvalidInput, "record must contain a non-empty customer_id")
	// ErrEmptyRecord indicates a nil or empty record was submitted.
	ErrEmptyRecord = errors.Wrap(errors.ErrInvalidInput, "record must not be empty")
)
