package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPIIType_Validate(t *testing.T) {
	tests := []struct {
		name        string
		piiType     PIIType
		expectError bool
	}{
		{
			name:        "Valid_Email",
			piiType:     PIITypeEmail,
			expectError: false,
		},
		{
			name:        "Valid_CreditCard",
			piiType:     PIITypeCreditCard,
			expectError: false,
		},
		{
			name:        "Valid_Generic",
			piiType:     PIITypeGeneric,
			expectError: false,
		},
		{
			name:        "Invalid_Unknown",
			piiType:     PIIType("pet_name"),
			expectError: true,
		},
		{
			name:        "Invalid_Empty",
			piiType:     PIIType(""),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.piiType.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDetection_IsHighConfidence(t *testing.T) {
	assert.True(t, Detection{Confidence: 0.95}.IsHighConfidence())
	assert.True(t, Detection{Confidence: HighConfidenceThreshold}.IsHighConfidence())
	assert.False(t, Detection{Confidence: 0.7}.IsHighConfidence())
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{
			name:     "empty value",
			value:    "",
			expected: "",
		},
		{
			name:     "short value keeps one rune",
			value:    "Jo",
			expected: "J***",
		},
		{
			name:     "long value keeps three runes",
			value:    "john.doe@example.com",
			expected: "joh***",
		},
		{
			name:     "multibyte value",
			value:    "José Silva",
			expected: "Jos***",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Preview(tt.value))
		})
	}
}
