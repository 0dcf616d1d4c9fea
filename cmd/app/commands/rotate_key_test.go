package commands

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunRotateKey(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("success", func(t *testing.T) {
		manager := &stubKeyManager{rotated: testKeyMaterial("v2_1735776000")}

		err := RunRotateKey(ctx, manager, logger)
		require.NoError(t, err)
		require.Equal(t, 1, manager.rotateCalls)
	})

	t.Run("rotate-error", func(t *testing.T) {
		manager := &stubKeyManager{rotateErr: errors.New("read-only key manager")}

		err := RunRotateKey(ctx, manager, logger)
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to rotate key")
	})
}
