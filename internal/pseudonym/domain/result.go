// Package domain defines the result models for pseudonymization.
package domain

import (
	"github.com/google/uuid"

	detectionDomain "github.com/allisson/pseudonymizer/internal/detection/domain"
	"github.com/allisson/pseudonymizer/internal/record"
)

// Summary aggregates what a pseudonymization pass did to a record.
type Summary struct {
	// FieldsTokenized is the number of fields replaced by tokens.
	FieldsTokenized int `json:"fields_tokenized"`
	// FieldsPerturbed is the number of numeric/date fields shifted within bounds.
	FieldsPerturbed int `json:"fields_perturbed"`
	// TokenizedByType counts tokenized fields per PII type.
	TokenizedByType map[detectionDomain.PIIType]int `json:"tokenized_by_type"`
	// HighConfidenceDetections counts detections at or above the high-confidence threshold.
	HighConfidenceDetections int `json:"high_confidence_detections"`
	// FieldPaths lists the rendered paths of every transformed field in order.
	FieldPaths []string `json:"field_paths"`
	// KeyVersion is the key material version used for tokenization.
	KeyVersion string `json:"key_version"`
}

// Result is the outcome of pseudonymizing a single record.
type Result struct {
	// PseudonymID identifies the stored mapping for later repersonalization.
	PseudonymID uuid.UUID `json:"pseudonym_id"`
	// Record is the transformed record, safe to hand to downstream consumers.
	Record record.Record `json:"record"`
	// Detections is the full detection audit, including detections that were
	// shadowed by an earlier transform on the same field.
	Detections []detectionDomain.Detection `json:"detections"`
	// Summary describes the applied transformations.
	Summary Summary `json:"summary"`
}

// BatchItem is the per-record outcome of a batch pseudonymization. Failures
// are isolated: one bad record never aborts its siblings.
type BatchItem struct {
	// Result is the successful outcome, nil when Err is set.
	Result *Result `json:"result,omitempty"`
	// Err is the failure for this record, nil on success.
	Err error `json:"-"`
}
