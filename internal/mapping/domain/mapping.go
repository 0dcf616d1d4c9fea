// Package domain defines the core domain models for pseudonym mappings.
// A mapping links a generated pseudonym identifier to the original record it
// replaced, together with an audit trail of every field transformation. Every
// mapping carries an absolute expiry after which repersonalization is refused.
package domain

import (
	"time"

	"github.com/google/uuid"

	detectionDomain "github.com/allisson/pseudonymizer/internal/detection/domain"
	"github.com/allisson/pseudonymizer/internal/record"
)

// Action identifies how a field value was transformed.
type Action string

const (
	// ActionTokenized marks a field replaced by a deterministic token.
	ActionTokenized Action = "tokenized"
	// ActionPerturbed marks a field whose value was shifted within bounds.
	ActionPerturbed Action = "perturbed"
)

// AppliedField records a single field transformation inside a mapping.
type AppliedField struct {
	// FieldPath is the rendered path of the field (e.g., "transactions[0].description").
	FieldPath string `json:"field_path"`
	// Type is the PII type that triggered the transformation, empty for
	// perturbation-only fields such as transaction amounts.
	Type detectionDomain.PIIType `json:"type,omitempty"`
	// Confidence is the detection confidence, zero for perturbation-only fields.
	Confidence float64 `json:"confidence,omitempty"`
	// Method is the detection mechanism that flagged the field.
	Method detectionDomain.Method `json:"method,omitempty"`
	// Token is the replacement value written into the record, empty for
	// perturbed numeric fields.
	Token string `json:"token,omitempty"`
	// Action indicates whether the field was tokenized or perturbed.
	Action Action `json:"action"`
}

// PseudonymMapping is the reversible link between a pseudonymized record and
// its original form.
type PseudonymMapping struct {
	// PseudonymID is the unique identifier assigned to the pseudonymized record.
	PseudonymID uuid.UUID `json:"pseudonym_id"`
	// OriginalRecord is a deep copy of the record before any transformation.
	OriginalRecord record.Record `json:"original_record"`
	// Fields is the ordered audit trail of transformations applied to the record.
	Fields []AppliedField `json:"fields"`
	// KeyVersion is the key material version used to tokenize this record.
	KeyVersion string `json:"key_version"`
	// CreatedAt is the UTC timestamp when the mapping was stored.
	CreatedAt time.Time `json:"created_at"`
	// ExpiresAt is the UTC timestamp after which the mapping is unrecoverable.
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the mapping has passed its absolute expiry.
func (m *PseudonymMapping) Expired(now time.Time) bool {
	return !now.Before(m.ExpiresAt)
}

// FieldPaths returns the rendered paths of all transformed fields in order.
func (m *PseudonymMapping) FieldPaths() []string {
	paths := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		paths[i] = f.FieldPath
	}
	return paths
}

// StoreStats describes the current state of the mapping store backend.
type StoreStats struct {
	// Backend is the active storage backend ("redis" or "memory").
	Backend string `json:"backend"`
	// Connected indicates whether the primary backend is reachable.
	Connected bool `json:"connected"`
	// MappingCount is the number of live mappings in the store.
	MappingCount int64 `json:"mapping_count"`
	// MappingTTL is the absolute expiry applied to new mappings.
	MappingTTL time.Duration `json:"mapping_ttl"`
}
