// Package service implements key lifecycle management for the tokenizer.
package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	apperrors "github.com/allisson/pseudonymizer/internal/errors"
	keysDomain "github.com/allisson/pseudonymizer/internal/keys/domain"
)

// KeyRepository persists and loads versioned key material.
type KeyRepository interface {
	Save(ctx context.Context, material *keysDomain.KeyMaterial) error
	Load(ctx context.Context, version string) (*keysDomain.KeyMaterial, error)
	LoadActive(ctx context.Context) (*keysDomain.KeyMaterial, error)
	ActiveVersion() (string, error)
}

// KeyManager owns the active versioned secret. The active material is held
// behind an atomic pointer: readers get an immutable snapshot and rotation
// swaps the whole value, so no locking is needed on the read path.
//
// The repersonalization service runs a read-only instance over a copy of the
// same files; it loads the material at startup but does not consult it on
// the retrieval path, since restoration is by mapping lookup.
type KeyManager struct {
	repo     KeyRepository
	logger   *slog.Logger
	readOnly bool
	active   atomic.Pointer[keysDomain.KeyMaterial]
}

// NewKeyManager creates a key manager that can generate and rotate keys.
func NewKeyManager(repo KeyRepository, logger *slog.Logger) *KeyManager {
	return &KeyManager{repo: repo, logger: logger}
}

// NewReadOnlyKeyManager creates a key manager that only loads existing keys.
func NewReadOnlyKeyManager(repo KeyRepository, logger *slog.Logger) *KeyManager {
	return &KeyManager{repo: repo, logger: logger, readOnly: true}
}

// Init loads the active key version from disk, generating the first version
// when none exists yet. Read-only managers never generate.
func (m *KeyManager) Init(ctx context.Context) error {
	material, err := m.repo.LoadActive(ctx)
	if err == nil {
		m.active.Store(material)
		m.logger.Info("loaded active key", slog.String("version", material.Version))
		return nil
	}
	if !apperrors.Is(err, keysDomain.ErrNoActiveKey) {
		return err
	}

	if m.readOnly {
		return keysDomain.ErrNoActiveKey
	}

	material, err = m.generate(ctx, 1)
	if err != nil {
		return err
	}
	m.active.Store(material)
	m.logger.Info("generated initial key", slog.String("version", material.Version))
	return nil
}

// Active returns the current key material. The returned value is immutable;
// callers should fetch it once per request and pass it through.
func (m *KeyManager) Active() (*keysDomain.KeyMaterial, error) {
	material := m.active.Load()
	if material == nil {
		return nil, keysDomain.ErrNoActiveKey
	}
	return material, nil
}

// Rotate generates the next key version, persists it, and atomically swaps
// the active reference. Tokens already issued under the old version are not
// migrated: mappings stay retrievable by id, but re-derived tokens for the
// same value will differ across the rotation boundary.
func (m *KeyManager) Rotate(ctx context.Context) (*keysDomain.KeyMaterial, error) {
	if m.readOnly {
		return nil, keysDomain.ErrReadOnlyKeyManager
	}

	current := m.active.Load()
	if current == nil {
		return nil, keysDomain.ErrNoActiveKey
	}

	n, err := keysDomain.VersionNumber(current.Version)
	if err != nil {
		return nil, err
	}

	material, err := m.generate(ctx, n+1)
	if err != nil {
		return nil, err
	}
	m.active.Store(material)
	m.logger.Info("rotated key",
		slog.String("previous_version", current.Version),
		slog.String("version", material.Version))
	return material, nil
}

// generate creates, persists, and returns a fresh key version.
func (m *KeyManager) generate(ctx context.Context, n int) (*keysDomain.KeyMaterial, error) {
	key := make([]byte, keysDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	material := &keysDomain.KeyMaterial{
		Version:   keysDomain.NewVersion(n, time.Now().UTC()),
		Key:       key,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.repo.Save(ctx, material); err != nil {
		return nil, err
	}
	return material, nil
}
