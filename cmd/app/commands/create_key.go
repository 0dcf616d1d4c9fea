package commands

import (
	"context"
	"log/slog"

	keysDomain "github.com/allisson/pseudonymizer/internal/keys/domain"
)

// keyManager abstracts the key manager operations used by key commands.
type keyManager interface {
	Active() (*keysDomain.KeyMaterial, error)
	Rotate(ctx context.Context) (*keysDomain.KeyMaterial, error)
}

// RunCreateKey ensures an active tokenization key exists and reports it.
// The container generates the first key version when the key directory is
// empty, so this command is idempotent: rerunning it reports the existing
// active version instead of creating another one.
func RunCreateKey(ctx context.Context, manager keyManager, logger *slog.Logger) error {
	material, err := manager.Active()
	if err != nil {
		return err
	}

	logger.Info("tokenization key ready",
		slog.String("version", material.Version),
		slog.Time("created_at", material.CreatedAt),
	)

	return nil
}
