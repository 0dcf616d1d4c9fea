// Package domain defines token formats for deterministic PII tokenization.
//
// A token is `<TYPE_PREFIX>_<fixed-length-hex>` (upper-cased). Email tokens
// additionally keep the original domain behind an `anon.` marker so
// downstream grouping by domain still works.
package domain

import (
	"strings"

	detectionDomain "github.com/allisson/pseudonymizer/internal/detection/domain"
)

// Format describes how tokens for one PII type are rendered.
type Format struct {
	Prefix string
	// HexLength is the number of truncated digest characters after the prefix.
	HexLength int
}

// GenericHexLength is the digest length used for PII types without an
// explicit format entry.
const GenericHexLength = 16

// formats is the explicit dispatch table. Types not listed here fall back
// to the generic format derived from the type name.
var formats = map[detectionDomain.PIIType]Format{
	detectionDomain.PIITypeName:        {Prefix: "USER_", HexLength: 16},
	detectionDomain.PIITypeEmail:       {Prefix: "EMAIL_", HexLength: 12},
	detectionDomain.PIITypePhone:       {Prefix: "PHONE_", HexLength: 10},
	detectionDomain.PIITypeSSN:         {Prefix: "SSN_", HexLength: 9},
	detectionDomain.PIITypeCreditCard:  {Prefix: "CARD_", HexLength: 12},
	detectionDomain.PIITypeBankAccount: {Prefix: "ACCT_", HexLength: 12},
	detectionDomain.PIITypeAddress:     {Prefix: "ADDR_", HexLength: 16},
	detectionDomain.PIITypeIPAddress:   {Prefix: "IP_", HexLength: 8},
	detectionDomain.PIITypeCustomerID:  {Prefix: "CUST_", HexLength: 12},
}

// FormatFor returns the token format for a PII type. Unknown types get the
// generic `<UPPER(TYPE)>_` prefix, so dispatch always fails closed to a
// usable format.
func FormatFor(piiType detectionDomain.PIIType) Format {
	if f, ok := formats[piiType]; ok {
		return f
	}
	return Format{
		Prefix:    strings.ToUpper(string(piiType)) + "_",
		HexLength: GenericHexLength,
	}
}
