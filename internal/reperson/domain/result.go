// Package domain defines the result models for repersonalization.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/pseudonymizer/internal/record"
)

// VerificationReport describes the structural integrity check of a recovered
// record. Verification never blocks recovery; it flags shape problems so the
// caller can decide whether to trust the payload.
type VerificationReport struct {
	// Passed is true when every structural check succeeded.
	Passed bool `json:"passed"`
	// Issues lists the failed checks in evaluation order.
	Issues []string `json:"issues,omitempty"`
}

// Result is the outcome of repersonalizing a pseudonym ID.
type Result struct {
	// PseudonymID is the identifier that was resolved.
	PseudonymID uuid.UUID `json:"pseudonym_id"`
	// Record is the recovered original record.
	Record record.Record `json:"record"`
	// FieldsRestored lists the rendered paths that had been transformed.
	FieldsRestored []string `json:"fields_restored"`
	// StoredAt is when the mapping was created.
	StoredAt time.Time `json:"stored_at"`
	// ExpiresAt is when the mapping becomes unrecoverable.
	ExpiresAt time.Time `json:"expires_at"`
	// Verification is the structural check report, nil when not requested.
	Verification *VerificationReport `json:"verification,omitempty"`
}

// BatchItem is the per-ID outcome of a batch repersonalization.
type BatchItem struct {
	// PseudonymID is the requested identifier.
	PseudonymID uuid.UUID `json:"pseudonym_id"`
	// Result is the successful outcome, nil when Err is set.
	Result *Result `json:"result,omitempty"`
	// Err is the failure for this ID, nil on success.
	Err error `json:"-"`
}
