// Package domain defines the PII detection domain models: the catalog of PII
// kinds the detector can flag and the Detection result emitted for each hit.
package domain

import (
	"errors"
)

// PIIType identifies the kind of personally identifiable information found.
type PIIType string

const (
	PIITypeName           PIIType = "name"
	PIITypeEmail          PIIType = "email"
	PIITypePhone          PIIType = "phone"
	PIITypeSSN            PIIType = "ssn"
	PIITypeCreditCard     PIIType = "credit_card"
	PIITypeBankAccount    PIIType = "bank_account"
	PIITypeAddress        PIIType = "address"
	PIITypeIPAddress      PIIType = "ip_address"
	PIITypeCustomerID     PIIType = "customer_id"
	PIITypeDateOfBirth    PIIType = "date_of_birth"
	PIITypePassport       PIIType = "passport"
	PIITypeDriverLicense  PIIType = "driver_license"
	PIITypeIBAN           PIIType = "iban"
	PIITypePostalCode     PIIType = "postal_code"
	PIITypeGeoCoordinates PIIType = "geo_coordinates"
	PIITypeTaxID          PIIType = "tax_id"
	PIITypeUsername       PIIType = "username"
	PIITypeAccountNumber  PIIType = "account_number"
	PIITypeDeviceID       PIIType = "device_id"
	PIITypeGeneric        PIIType = "generic"
)

// knownTypes is the closed set of valid PII types.
var knownTypes = map[PIIType]struct{}{
	PIITypeName: {}, PIITypeEmail: {}, PIITypePhone: {}, PIITypeSSN: {},
	PIITypeCreditCard: {}, PIITypeBankAccount: {}, PIITypeAddress: {},
	PIITypeIPAddress: {}, PIITypeCustomerID: {}, PIITypeDateOfBirth: {},
	PIITypePassport: {}, PIITypeDriverLicense: {}, PIITypeIBAN: {},
	PIITypePostalCode: {}, PIITypeGeoCoordinates: {}, PIITypeTaxID: {},
	PIITypeUsername: {}, PIITypeAccountNumber: {}, PIITypeDeviceID: {},
	PIITypeGeneric: {},
}

// Validate checks if the PII type is part of the known catalog.
func (p PIIType) Validate() error {
	if _, ok := knownTypes[p]; !ok {
		return errors.New("invalid pii type")
	}
	return nil
}

// String returns the string representation of the PII type.
func (p PIIType) String() string {
	return string(p)
}
