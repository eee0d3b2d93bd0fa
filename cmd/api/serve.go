package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"questboard/internal/app/bootstrap"
	"questboard/internal/platform/config"

	"github.com/spf13/cobra"
)

func serveCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := bootstrap.BuildAPI(ctx, *cfg, slog.Default())
			if err != nil {
				return err
			}
			defer func() {
				if err := app.Close(); err != nil {
					slog.Error("api shutdown close failed", "error", err.Error())
				}
			}()
			return app.Run(ctx)
		},
	}
}

func migrateCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := bootstrap.Build(ctx, *cfg, slog.Default())
			if err != nil {
				return err
			}
			defer rt.Close()
			return rt.Migrate(ctx)
		},
	}
}
