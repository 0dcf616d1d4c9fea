package commands

import (
	"context"
	"fmt"
	"log/slog"
)

// RunRotateKey generates the next key version and marks it active.
//
// Mappings stored under previous versions remain retrievable by pseudonym ID,
// but tokens re-derived for the same value will differ across the rotation
// boundary.
func RunRotateKey(ctx context.Context, manager keyManager, logger *slog.Logger) error {
	material, err := manager.Rotate(ctx)
	if err != nil {
		return fmt.Errorf("failed to rotate key: %w", err)
	}

	logger.Info("tokenization key rotated successfully",
		slog.String("version", material.Version),
		slog.Time("created_at", material.CreatedAt),
	)

	return nil
}
