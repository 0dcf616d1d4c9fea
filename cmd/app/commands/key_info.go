package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// keyInfoOutput is the JSON shape for key-info --format json.
type keyInfoOutput struct {
	Version   string    `json:"version"`
	KeyHash   string    `json:"key_hash"`
	CreatedAt time.Time `json:"created_at"`
}

// RunKeyInfo prints the active key version without exposing the secret.
// Only the version, the SHA-256 hash of the key, and the creation time are
// shown, matching what the metadata file records.
func RunKeyInfo(
	ctx context.Context,
	manager keyManager,
	logger *slog.Logger,
	format string,
	io IOTuple,
) error {
	material, err := manager.Active()
	if err != nil {
		return err
	}

	switch format {
	case "json":
		output := keyInfoOutput{
			Version:   material.Version,
			KeyHash:   material.Hash(),
			CreatedAt: material.CreatedAt,
		}
		encoder := json.NewEncoder(io.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return fmt.Errorf("failed to encode key info: %w", err)
		}
	case "text":
		fmt.Fprintf(io.Writer, "Version:    %s\n", material.Version)
		fmt.Fprintf(io.Writer, "Key hash:   %s\n", material.Hash())
		fmt.Fprintf(io.Writer, "Created at: %s\n", material.CreatedAt.Format(time.RFC3339))
	default:
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}

	logger.Debug("key info displayed", slog.String("version", material.Version))

	return nil
}
