// Package repository persists key material to the filesystem.
//
// Each key version produces two files in the key directory: a metadata file
// `<version>.json` holding {version, key_hash, created_at} and a raw secret
// file `<version>.key` created with 0600 permissions. An `active` pointer
// file names the version in use. When a keeper is configured, the secret
// file holds the keeper-wrapped ciphertext instead of the raw bytes.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/allisson/pseudonymizer/internal/errors"
	keysDomain "github.com/allisson/pseudonymizer/internal/keys/domain"
)

const (
	metadataSuffix    = ".json"
	secretSuffix      = ".key"
	activePointerName = "active"

	dirPerm    = 0o700
	secretPerm = 0o600
	filePerm   = 0o644
)

// FileRepository stores key versions under a single directory.
type FileRepository struct {
	dir    string
	keeper keysDomain.Keeper
}

// NewFileRepository creates a repository rooted at dir, creating the
// directory if needed. keeper is optional; when nil the secret is stored raw.
func NewFileRepository(dir string, keeper keysDomain.Keeper) (*FileRepository, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	return &FileRepository{dir: dir, keeper: keeper}, nil
}

// Save persists a key version (metadata + secret) and marks it active.
func (r *FileRepository) Save(ctx context.Context, material *keysDomain.KeyMaterial) error {
	if len(material.Key) != keysDomain.KeySize {
		return keysDomain.ErrInvalidKeySize
	}

	metadata := keysDomain.Metadata{
		Version:   material.Version,
		KeyHash:   material.Hash(),
		CreatedAt: material.CreatedAt,
	}
	metadataBytes, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal key metadata: %w", err)
	}

	secret := material.Key
	if r.keeper != nil {
		wrapped, err := r.keeper.Encrypt(ctx, material.Key)
		if err != nil {
			return apperrors.Wrap(err, "failed to wrap secret with keeper")
		}
		secret = wrapped
	}

	metadataPath := filepath.Join(r.dir, material.Version+metadataSuffix)
	if err := os.WriteFile(metadataPath, metadataBytes, filePerm); err != nil {
		return fmt.Errorf("failed to write key metadata: %w", err)
	}

	secretPath := filepath.Join(r.dir, material.Version+secretSuffix)
	if err := os.WriteFile(secretPath, secret, secretPerm); err != nil {
		return fmt.Errorf("failed to write secret file: %w", err)
	}

	return r.setActive(material.Version)
}

// Load reads a key version from disk and verifies its hash against metadata.
func (r *FileRepository) Load(ctx context.Context, version string) (*keysDomain.KeyMaterial, error) {
	metadataBytes, err := os.ReadFile(filepath.Join(r.dir, version+metadataSuffix))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, keysDomain.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read key metadata: %w", err)
	}

	var metadata keysDomain.Metadata
	if err := json.Unmarshal(metadataBytes, &metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal key metadata: %w", err)
	}

	secret, err := os.ReadFile(filepath.Join(r.dir, version+secretSuffix))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, keysDomain.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read secret file: %w", err)
	}

	if r.keeper != nil {
		unwrapped, err := r.keeper.Decrypt(ctx, secret)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to unwrap secret with keeper")
		}
		secret = unwrapped
	}

	if len(secret) != keysDomain.KeySize {
		return nil, keysDomain.ErrInvalidKeySize
	}

	material := &keysDomain.KeyMaterial{
		Version:   metadata.Version,
		Key:       secret,
		CreatedAt: metadata.CreatedAt,
	}
	if material.Hash() != metadata.KeyHash {
		return nil, keysDomain.ErrKeyHashMismatch
	}

	return material, nil
}

// LoadActive reads the version named by the active pointer file.
func (r *FileRepository) LoadActive(ctx context.Context) (*keysDomain.KeyMaterial, error) {
	version, err := r.ActiveVersion()
	if err != nil {
		return nil, err
	}
	return r.Load(ctx, version)
}

// ActiveVersion returns the version named by the active pointer file.
func (r *FileRepository) ActiveVersion() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.dir, activePointerName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", keysDomain.ErrNoActiveKey
		}
		return "", fmt.Errorf("failed to read active pointer: %w", err)
	}
	version := strings.TrimSpace(string(data))
	if version == "" {
		return "", keysDomain.ErrNoActiveKey
	}
	return version, nil
}

// setActive atomically replaces the active pointer file.
func (r *FileRepository) setActive(version string) error {
	tmp := filepath.Join(r.dir, activePointerName+".tmp")
	if err := os.WriteFile(tmp, []byte(version+"\n"), filePerm); err != nil {
		return fmt.Errorf("failed to write active pointer: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(r.dir, activePointerName)); err != nil {
		return fmt.Errorf("failed to replace active pointer: %w", err)
	}
	return nil
}
