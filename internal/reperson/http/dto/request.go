// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/google/uuid"
)

// MaxBatchSize bounds how many pseudonym IDs a single batch request may carry.
const MaxBatchSize = 100

// RepersonalizeRequest contains the parameters for recovering an original record.
type RepersonalizeRequest struct {
	PseudonymID string `json:"pseudonym_id"`
	Verify      bool   `json:"verify,omitempty"`
}

// Validate checks if the repersonalize request is valid.
func (r *RepersonalizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PseudonymID,
			validation.Required,
			validation.By(validateUUID),
		),
	)
}

// BatchRepersonalizeRequest contains the parameters for batch recovery.
// FailFast aborts the batch at the first failing ID instead of continuing
// with the remaining items.
type BatchRepersonalizeRequest struct {
	PseudonymIDs []string `json:"pseudonym_ids"`
	Verify       bool     `json:"verify,omitempty"`
	FailFast     bool     `json:"fail_fast,omitempty"`
}

// Validate checks if the batch repersonalize request is valid.
func (r *BatchRepersonalizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PseudonymIDs,
			validation.Required,
			validation.Length(1, MaxBatchSize),
			validation.Each(validation.By(validateUUID)),
		),
	)
}

// validateUUID validates that the value is a well-formed UUID string.
func validateUUID(value interface{}) error {
	id, ok := value.(string)
	if !ok {
		return validation.NewError("validation_uuid", "must be a string")
	}
	if _, err := uuid.Parse(id); err != nil {
		return validation.NewError("validation_uuid", "must be a valid UUID")
	}
	return nil
}
