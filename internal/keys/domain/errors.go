package domain

import (
	"github.com/allisson/pseudonymizer/internal/errors"
)

var (
	// ErrKeyNotFound indicates the requested key version does not exist on disk.
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "key version not found")

	// ErrNoActiveKey indicates no active key version has been created yet.
	ErrNoActiveKey = errors.Wrap(errors.ErrNotFound, "no active key version")

	// ErrInvalidKeySize indicates the loaded secret is not 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "key must be 32 bytes")

	// ErrKeyHashMismatch indicates the secret file does not match the persisted metadata hash.
	ErrKeyHashMismatch = errors.Wrap(errors.ErrInvalidInput, "key hash does not match metadata")

	// ErrReadOnlyKeyManager indicates a rotation was attempted on a read-only replica.
	ErrReadOnlyKeyManager = errors.Wrap(errors.ErrForbidden, "key manager is read-only")
)
