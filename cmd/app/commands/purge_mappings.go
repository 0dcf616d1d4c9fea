package commands

import (
	"context"
	"fmt"
	"log/slog"
)

// mappingStore abstracts the mapping repository operations used by the purge command.
type mappingStore interface {
	Count(ctx context.Context) (int64, error)
	PurgeAll(ctx context.Context) (int64, error)
}

// RunPurgeMappings deletes every stored pseudonym mapping, making all issued
// pseudonym IDs irreversible. With dry-run it only reports how many mappings
// would be removed.
func RunPurgeMappings(ctx context.Context, store mappingStore, dryRun bool, logger *slog.Logger) error {
	if dryRun {
		count, err := store.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count mappings: %w", err)
		}

		logger.Info("dry run: mappings that would be purged", slog.Int64("count", count))
		return nil
	}

	purged, err := store.PurgeAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge mappings: %w", err)
	}

	logger.Info("mappings purged", slog.Int64("count", purged))

	return nil
}
