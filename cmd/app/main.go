// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/pseudonymizer/cmd/app/commands"
	"github.com/allisson/pseudonymizer/internal/app"
	"github.com/allisson/pseudonymizer/internal/config"
)

const version = "1.0.0"

// runWithContainer builds a DI container for a one-shot command and
// guarantees its resources are released when the command returns.
func runWithContainer(
	ctx context.Context,
	fn func(ctx context.Context, container *app.Container, logger *slog.Logger) error,
) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()

	defer func() {
		if err := container.Shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown container", slog.Any("error", err))
		}
	}()

	return fn(ctx, container, logger)
}

func main() {
	cmd := &cli.Command{
		Name:    "pseudonymizer",
		Usage:   "Reversible pseudonymization service for financial records",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the pseudonymization HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "reperson-server",
				Usage: "Start the repersonalization HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRepersonServer(ctx, version)
				},
			},
			{
				Name:  "create-key",
				Usage: "Ensure an active tokenization key exists",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runWithContainer(ctx, func(ctx context.Context, container *app.Container, logger *slog.Logger) error {
						manager, err := container.KeyManager()
						if err != nil {
							return err
						}
						return commands.RunCreateKey(ctx, manager, logger)
					})
				},
			},
			{
				Name:  "rotate-key",
				Usage: "Rotate the tokenization key to a new version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runWithContainer(ctx, func(ctx context.Context, container *app.Container, logger *slog.Logger) error {
						manager, err := container.KeyManager()
						if err != nil {
							return err
						}
						return commands.RunRotateKey(ctx, manager, logger)
					})
				},
			},
			{
				Name:  "key-info",
				Usage: "Show the active tokenization key version",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runWithContainer(ctx, func(ctx context.Context, container *app.Container, logger *slog.Logger) error {
						manager, err := container.ReadOnlyKeyManager()
						if err != nil {
							return err
						}
						return commands.RunKeyInfo(ctx, manager, logger, cmd.String("format"), commands.DefaultIO())
					})
				},
			},
			{
				Name:  "purge-mappings",
				Usage: "Delete all stored pseudonym mappings",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "dry-run",
						Aliases: []string{"n"},
						Value:   false,
						Usage:   "Show how many mappings would be deleted without deleting",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runWithContainer(ctx, func(ctx context.Context, container *app.Container, logger *slog.Logger) error {
						store, err := container.MappingRepository()
						if err != nil {
							return err
						}
						return commands.RunPurgeMappings(ctx, store, cmd.Bool("dry-run"), logger)
					})
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
