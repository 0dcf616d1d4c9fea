package repository

import (
	"bytes"
	"context"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	keysDomain "github.com/allisson/pseudonymizer/internal/keys/domain"
)

// xorKeeper is a trivial reversible keeper for tests.
type xorKeeper struct{}

func (xorKeeper) Encrypt(_ context.Context, plaintext []byte) ([]byte, error) {
	out := make([]byte, len(plaintext))
	for i, b := range plaintext {
		out[i] = b ^ 0xAA
	}
	return out, nil
}

func (k xorKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	return k.Encrypt(ctx, ciphertext)
}

func newTestMaterial(t *testing.T, version string) *keysDomain.KeyMaterial {
	t.Helper()
	key := make([]byte, keysDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return &keysDomain.KeyMaterial{
		Version:   version,
		Key:       key,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestFileRepository_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	repo, err := NewFileRepository(t.TempDir(), nil)
	require.NoError(t, err)

	material := newTestMaterial(t, "v1_1700000000")
	require.NoError(t, repo.Save(ctx, material))

	loaded, err := repo.Load(ctx, material.Version)
	require.NoError(t, err)
	assert.Equal(t, material.Version, loaded.Version)
	assert.Equal(t, material.Key, loaded.Key)
	assert.Equal(t, material.CreatedAt, loaded.CreatedAt)
}

func TestFileRepository_SecretFilePermissions(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := NewFileRepository(dir, nil)
	require.NoError(t, err)

	material := newTestMaterial(t, "v1_1700000000")
	require.NoError(t, repo.Save(ctx, material))

	info, err := os.Stat(filepath.Join(dir, "v1_1700000000.key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileRepository_ActivePointer(t *testing.T) {
	ctx := context.Background()
	repo, err := NewFileRepository(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = repo.ActiveVersion()
	assert.ErrorIs(t, err, keysDomain.ErrNoActiveKey)

	first := newTestMaterial(t, "v1_1700000000")
	require.NoError(t, repo.Save(ctx, first))

	version, err := repo.ActiveVersion()
	require.NoError(t, err)
	assert.Equal(t, "v1_1700000000", version)

	// A newer version replaces the pointer.
	second := newTestMaterial(t, "v2_1700000100")
	require.NoError(t, repo.Save(ctx, second))

	loaded, err := repo.LoadActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v2_1700000100", loaded.Version)
	assert.Equal(t, second.Key, loaded.Key)

	// The old version is still loadable by name.
	old, err := repo.Load(ctx, "v1_1700000000")
	require.NoError(t, err)
	assert.Equal(t, first.Key, old.Key)
}

func TestFileRepository_LoadUnknownVersion(t *testing.T) {
	repo, err := NewFileRepository(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = repo.Load(context.Background(), "v9_123")
	assert.ErrorIs(t, err, keysDomain.ErrKeyNotFound)
}

func TestFileRepository_HashMismatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := NewFileRepository(dir, nil)
	require.NoError(t, err)

	material := newTestMaterial(t, "v1_1700000000")
	require.NoError(t, repo.Save(ctx, material))

	// Corrupt the secret file.
	tampered := make([]byte, keysDomain.KeySize)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "v1_1700000000.key"), tampered, 0o600))

	_, err = repo.Load(ctx, "v1_1700000000")
	assert.ErrorIs(t, err, keysDomain.ErrKeyHashMismatch)
}

func TestFileRepository_InvalidKeySize(t *testing.T) {
	repo, err := NewFileRepository(t.TempDir(), nil)
	require.NoError(t, err)

	err = repo.Save(context.Background(), &keysDomain.KeyMaterial{
		Version:   "v1_1700000000",
		Key:       []byte("short"),
		CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, keysDomain.ErrInvalidKeySize)
}

func TestFileRepository_WithKeeper(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := NewFileRepository(dir, xorKeeper{})
	require.NoError(t, err)

	material := newTestMaterial(t, "v1_1700000000")
	require.NoError(t, repo.Save(ctx, material))

	// On-disk bytes are wrapped, not the raw secret.
	onDisk, err := os.ReadFile(filepath.Join(dir, "v1_1700000000.key"))
	require.NoError(t, err)
	assert.False(t, bytes.Equal(material.Key, onDisk))

	loaded, err := repo.Load(ctx, material.Version)
	require.NoError(t, err)
	assert.Equal(t, material.Key, loaded.Key)
}
