// Package service implements keyed deterministic tokenization.
//
// Each token is an HMAC-SHA256 over the UTF-8 bytes of the value, keyed with
// a per-PII-type subkey derived from the active secret via HKDF, truncated
// to the type's length, upper-cased, and prefixed with the type tag. The
// same (value, type, key version) always yields the same token; there is no
// per-call randomness, so repeated entities map consistently across a record.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"

	detectionDomain "github.com/allisson/pseudonymizer/internal/detection/domain"
	keysDomain "github.com/allisson/pseudonymizer/internal/keys/domain"
	tokenDomain "github.com/allisson/pseudonymizer/internal/tokenization/domain"
)

// subkeyInfoPrefix namespaces HKDF derivations so tokenization subkeys can
// never collide with other uses of the master secret.
const subkeyInfoPrefix = "tokenize:"

// Tokenizer produces deterministic type-tagged tokens. It is stateless; the
// key material is passed per call so a request is internally consistent even
// when a rotation happens mid-flight.
type Tokenizer struct{}

// NewTokenizer creates a new tokenizer.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// TokenizeByType dispatches on the PII type and returns the token. Email
// values get domain-preserving treatment; any type without an explicit
// format entry falls back to the generic tokenizer.
func (t *Tokenizer) TokenizeByType(
	value string,
	piiType detectionDomain.PIIType,
	material *keysDomain.KeyMaterial,
) (string, error) {
	if piiType == detectionDomain.PIITypeEmail {
		return t.TokenizeEmail(value, material)
	}
	return t.tokenize(value, piiType, material)
}

// TokenizeEmail tokenizes the local part and preserves the original domain:
// `EMAIL_<hash>@anon.<original-domain>`. Values without an "@" are treated
// as opaque and tokenized without a domain suffix.
func (t *Tokenizer) TokenizeEmail(value string, material *keysDomain.KeyMaterial) (string, error) {
	token, err := t.tokenize(value, detectionDomain.PIITypeEmail, material)
	if err != nil {
		return "", err
	}

	at := strings.LastIndex(value, "@")
	if at < 0 || at == len(value)-1 {
		return token, nil
	}
	return token + "@anon." + value[at+1:], nil
}

// tokenize is the shared primitive behind every type-specific operation.
func (t *Tokenizer) tokenize(
	value string,
	piiType detectionDomain.PIIType,
	material *keysDomain.KeyMaterial,
) (string, error) {
	if material == nil || len(material.Key) == 0 {
		return "", keysDomain.ErrNoActiveKey
	}

	subkey, err := deriveSubkey(material.Key, piiType)
	if err != nil {
		return "", err
	}
	defer keysDomain.Zero(subkey)

	mac := hmac.New(sha256.New, subkey)
	mac.Write([]byte(value))
	digest := hex.EncodeToString(mac.Sum(nil))

	format := tokenDomain.FormatFor(piiType)
	return format.Prefix + strings.ToUpper(digest[:format.HexLength]), nil
}

// deriveSubkey derives the per-type 32-byte HMAC key from the master secret.
func deriveSubkey(masterKey []byte, piiType detectionDomain.PIIType) ([]byte, error) {
	reader := hkdf.New(sha256.New, masterKey, nil, []byte(subkeyInfoPrefix+string(piiType)))
	subkey := make([]byte, 32)
	if _, err := io.ReadFull(reader, subkey); err != nil {
		return nil, fmt.Errorf("failed to derive tokenization subkey: %w", err)
	}
	return subkey, nil
}
