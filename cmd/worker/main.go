package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"questboard/internal/app/bootstrap"
	"questboard/internal/platform/config"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

const programName = "questboard-worker"

// Worker process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring.
// 3) Relay outbox rows onto the bus and run the decision audit consumer.
func main() {
	var debug bool
	rootCmd := &cobra.Command{
		Use:          programName,
		Short:        "questboard outbox relay and event consumers",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				AddSource: debug,
				Level:     level,
			}))
			slog.SetDefault(logger)
			if _, err := maxprocs.Set(maxprocs.Logger(func(format string, v ...any) {
				logger.Info(fmt.Sprintf(format, v...), "component", programName)
			})); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := bootstrap.BuildWorker(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("bootstrap worker failed: %w", err)
			}
			defer func() {
				if err := app.Close(); err != nil {
					logger.Error("worker shutdown close failed", "error", err.Error())
				}
			}()
			return app.Run(ctx)
		},
	}
	rootCmd.Flags().BoolVarP(&debug, "debug", "D", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
