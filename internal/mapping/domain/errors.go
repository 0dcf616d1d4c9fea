// Package domain defines core domain models and errors for pseudonym mappings.
package domain

import (
	"github.com/allisson/pseudonymizer/internal/errors"
)

// Mapping-specific error definitions.
var (
	// ErrMappingNotFound indicates no mapping exists for the pseudonym ID,
	// either because it never existed or its TTL elapsed.
	ErrMappingNotFound = errors.Wrap(errors.ErrNotFound, "mapping not found or expired")
	// ErrStoreUnavailable indicates the mapping store backend is unreachable.
	ErrStoreUnavailable = errors.Wrap(errors.ErrUnavailable, "mapping store unavailable")
)
