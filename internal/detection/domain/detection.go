package domain

import (
	"github.com/allisson/pseudonymizer/internal/record"
)

// Method describes which mechanism produced a detection.
type Method string

const (
	// MethodFieldName indicates the field's local name matched an indicator list.
	MethodFieldName Method = "field_name"
	// MethodPattern indicates the field's value matched a compiled pattern.
	MethodPattern Method = "pattern"
)

// HighConfidenceThreshold is the confidence at or above which a detection is
// counted as high-confidence in pseudonymization summaries.
const HighConfidenceThreshold = 0.8

// Detection is a single PII hit on a record leaf. The same leaf can carry
// more than one detection: the field-name heuristic and the value patterns
// fire independently, and the detector does not deduplicate.
type Detection struct {
	Path         record.Path `json:"-"`
	FieldPath    string      `json:"field_path"`
	Type         PIIType     `json:"pii_type"`
	Confidence   float64     `json:"confidence"`
	ValuePreview string      `json:"value_preview"`
	Method       Method      `json:"method"`
}

// IsHighConfidence reports whether the detection meets the high-confidence threshold.
func (d Detection) IsHighConfidence() bool {
	return d.Confidence >= HighConfidenceThreshold
}

// Preview masks a value for audit output: up to three leading characters are
// kept and the rest is elided. Empty values stay empty.
func Preview(value string) string {
	const visible = 3
	if value == "" {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= visible {
		return string(runes[:1]) + "***"
	}
	return string(runes[:visible]) + "***"
}
