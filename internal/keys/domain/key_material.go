// Package domain defines the key-management domain models.
//
// The service holds exactly one active versioned 256-bit secret used to key
// the deterministic tokenizer. Rotation creates a new version without
// migrating tokens issued under the old one; restoration is lookup-based, so
// old mappings remain retrievable by id.
package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// KeySize is the required secret length in bytes (256 bits).
const KeySize = 32

// KeyMaterial is an immutable snapshot of the active secret. Callers fetch
// it once per request and thread it through calls; it is never mutated after
// construction.
type KeyMaterial struct {
	Version   string
	Key       []byte
	CreatedAt time.Time
}

// Hash returns the SHA-256 hex digest of the secret, as persisted in the
// metadata file for integrity checks.
func (k *KeyMaterial) Hash() string {
	sum := sha256.Sum256(k.Key)
	return hex.EncodeToString(sum[:])
}

// Metadata is the persisted description of a key version. The raw secret
// lives in a separate permission-restricted file named by version.
type Metadata struct {
	Version   string    `json:"version"`
	KeyHash   string    `json:"key_hash"`
	CreatedAt time.Time `json:"created_at"`
}

// NewVersion builds a version id of the form "v<n>_<unix-timestamp>".
func NewVersion(n int, now time.Time) string {
	return fmt.Sprintf("v%d_%d", n, now.Unix())
}

// VersionNumber extracts the numeric component from a version id.
func VersionNumber(version string) (int, error) {
	trimmed, ok := strings.CutPrefix(version, "v")
	if !ok {
		return 0, fmt.Errorf("malformed key version %q", version)
	}
	numPart, _, ok := strings.Cut(trimmed, "_")
	if !ok {
		return 0, fmt.Errorf("malformed key version %q", version)
	}
	n, err := strconv.Atoi(numPart)
	if err != nil {
		return 0, fmt.Errorf("malformed key version %q: %w", version, err)
	}
	return n, nil
}

// Keeper wraps an external secrets keeper used to protect the raw secret
// file at rest. *gocloud.dev/secrets.Keeper implements this interface.
type Keeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// Zero overwrites sensitive byte slices in memory.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
