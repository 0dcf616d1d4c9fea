// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/allisson/pseudonymizer/internal/record"
)

// MaxBatchSize bounds how many records a single batch request may carry.
const MaxBatchSize = 100

// PseudonymizeRequest contains the record to pseudonymize.
type PseudonymizeRequest struct {
	Record record.Record `json:"record"`
}

// Validate checks if the pseudonymize request is valid.
func (r *PseudonymizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Record,
			validation.Required,
		),
	)
}

// BatchPseudonymizeRequest contains the records to pseudonymize in one call.
// FailFast aborts the batch at the first failing record instead of continuing
// with the remaining items.
type BatchPseudonymizeRequest struct {
	Records  []record.Record `json:"records"`
	FailFast bool            `json:"fail_fast,omitempty"`
}

// Validate checks if the batch pseudonymize request is valid.
func (r *BatchPseudonymizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Records,
			validation.Required,
			validation.Length(1, MaxBatchSize),
		),
	)
}
