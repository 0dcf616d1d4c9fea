package dto

import (
	"time"

	"github.com/allisson/pseudonymizer/internal/record"
	repersonDomain "github.com/allisson/pseudonymizer/internal/reperson/domain"
)

// VerificationResponse represents a structural verification report in API responses.
type VerificationResponse struct {
	Passed bool     `json:"passed"`
	Issues []string `json:"issues,omitempty"`
}

// RepersonalizeResponse represents the result of recovering an original record.
type RepersonalizeResponse struct {
	PseudonymID    string                `json:"pseudonym_id"`
	Record         record.Record         `json:"record"`
	FieldsRestored []string              `json:"fields_restored"`
	StoredAt       time.Time             `json:"stored_at"`
	ExpiresAt      time.Time             `json:"expires_at"`
	Verification   *VerificationResponse `json:"verification,omitempty"`
}

// MapResultToRepersonalizeResponse converts a domain result to an API response.
func MapResultToRepersonalizeResponse(result *repersonDomain.Result) RepersonalizeResponse {
	response := RepersonalizeResponse{
		PseudonymID:    result.PseudonymID.String(),
		Record:         result.Record,
		FieldsRestored: result.FieldsRestored,
		StoredAt:       result.StoredAt,
		ExpiresAt:      result.ExpiresAt,
	}
	if result.Verification != nil {
		response.Verification = &VerificationResponse{
			Passed: result.Verification.Passed,
			Issues: result.Verification.Issues,
		}
	}
	return response
}

// BatchItemResponse represents the per-ID outcome of a batch request.
type BatchItemResponse struct {
	PseudonymID string                 `json:"pseudonym_id"`
	Success     bool                   `json:"success"`
	Error       string                 `json:"error,omitempty"`
	Result      *RepersonalizeResponse `json:"result,omitempty"`
}

// BatchRepersonalizeResponse represents the result of a batch recovery.
type BatchRepersonalizeResponse struct {
	Results   []BatchItemResponse `json:"results"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
}

// MapBatchItemsToResponse converts batch outcomes to an API response.
func MapBatchItemsToResponse(items []repersonDomain.BatchItem) BatchRepersonalizeResponse {
	response := BatchRepersonalizeResponse{
		Results: make([]BatchItemResponse, len(items)),
	}
	for i, item := range items {
		if item.Err != nil {
			response.Results[i] = BatchItemResponse{
				PseudonymID: item.PseudonymID.String(),
				Success:     false,
				Error:       item.Err.Error(),
			}
			response.Failed++
			continue
		}
		result := MapResultToRepersonalizeResponse(item.Result)
		response.Results[i] = BatchItemResponse{
			PseudonymID: item.PseudonymID.String(),
			Success:     true,
			Result:      &result,
		}
		response.Succeeded++
	}
	return response
}
