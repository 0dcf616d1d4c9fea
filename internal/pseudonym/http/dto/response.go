// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	detectionDomain "github.com/allisson/pseudonymizer/internal/detection/domain"
	mappingDomain "github.com/allisson/pseudonymizer/internal/mapping/domain"
	pseudonymDomain "github.com/allisson/pseudonymizer/internal/pseudonym/domain"
	"github.com/allisson/pseudonymizer/internal/record"
)

// DetectionResponse represents a single PII detection in API responses.
type DetectionResponse struct {
	FieldPath    string  `json:"field_path"`
	Type         string  `json:"type"`
	Confidence   float64 `json:"confidence"`
	ValuePreview string  `json:"value_preview"`
	Method       string  `json:"method"`
}

// SummaryResponse summarizes the transformations applied to a record.
type SummaryResponse struct {
	FieldsTokenized          int            `json:"fields_tokenized"`
	FieldsPerturbed          int            `json:"fields_perturbed"`
	TokenizedByType          map[string]int `json:"tokenized_by_type"`
	HighConfidenceDetections int            `json:"high_confidence_detections"`
	FieldPaths               []string       `json:"field_paths"`
	KeyVersion               string         `json:"key_version"`
}

// PseudonymizeResponse represents the result of pseudonymizing a record.
type PseudonymizeResponse struct {
	PseudonymID string              `json:"pseudonym_id"`
	Record      record.Record       `json:"record"`
	Detections  []DetectionResponse `json:"detections"`
	Summary     SummaryResponse     `json:"summary"`
}

// MapResultToPseudonymizeResponse converts a domain result to an API response.
func MapResultToPseudonymizeResponse(result *pseudonymDomain.Result) PseudonymizeResponse {
	detections := make([]DetectionResponse, len(result.Detections))
	for i, det := range result.Detections {
		detections[i] = mapDetection(det)
	}

	byType := make(map[string]int, len(result.Summary.TokenizedByType))
	for piiType, count := range result.Summary.TokenizedByType {
		byType[piiType.String()] = count
	}

	return PseudonymizeResponse{
		PseudonymID: result.PseudonymID.String(),
		Record:      result.Record,
		Detections:  detections,
		Summary: SummaryResponse{
			FieldsTokenized:          result.Summary.FieldsTokenized,
			FieldsPerturbed:          result.Summary.FieldsPerturbed,
			TokenizedByType:          byType,
			HighConfidenceDetections: result.Summary.HighConfidenceDetections,
			FieldPaths:               result.Summary.FieldPaths,
			KeyVersion:               result.Summary.KeyVersion,
		},
	}
}

func mapDetection(det detectionDomain.Detection) DetectionResponse {
	return DetectionResponse{
		FieldPath:    det.FieldPath,
		Type:         det.Type.String(),
		Confidence:   det.Confidence,
		ValuePreview: det.ValuePreview,
		Method:       string(det.Method),
	}
}

// BatchItemResponse represents the per-record outcome of a batch request.
type BatchItemResponse struct {
	Success bool                  `json:"success"`
	Error   string                `json:"error,omitempty"`
	Result  *PseudonymizeResponse `json:"result,omitempty"`
}

// BatchPseudonymizeResponse represents the result of a batch pseudonymization.
type BatchPseudonymizeResponse struct {
	Results   []BatchItemResponse `json:"results"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
}

// MapBatchItemsToResponse converts batch outcomes to an API response.
func MapBatchItemsToResponse(items []pseudonymDomain.BatchItem) BatchPseudonymizeResponse {
	response := BatchPseudonymizeResponse{
		Results: make([]BatchItemResponse, len(items)),
	}
	for i, item := range items {
		if item.Err != nil {
			response.Results[i] = BatchItemResponse{Success: false, Error: item.Err.Error()}
			response.Failed++
			continue
		}
		result := MapResultToPseudonymizeResponse(item.Result)
		response.Results[i] = BatchItemResponse{Success: true, Result: &result}
		response.Succeeded++
	}
	return response
}

// StoreStatsResponse represents the mapping store state in API responses.
type StoreStatsResponse struct {
	Backend           string `json:"backend"`
	Connected         bool   `json:"connected"`
	MappingCount      int64  `json:"mapping_count"`
	MappingTTLSeconds int64  `json:"mapping_ttl_seconds"`
}

// MapStoreStatsToResponse converts domain store stats to an API response.
func MapStoreStatsToResponse(stats *mappingDomain.StoreStats) StoreStatsResponse {
	return StoreStatsResponse{
		Backend:           stats.Backend,
		Connected:         stats.Connected,
		MappingCount:      stats.MappingCount,
		MappingTTLSeconds: int64(stats.MappingTTL.Seconds()),
	}
}
