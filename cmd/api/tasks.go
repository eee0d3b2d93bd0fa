package main

import (
	"fmt"
	"log/slog"

	"questboard/internal/app/bootstrap"
	"questboard/internal/platform/config"

	"github.com/spf13/cobra"
)

func tasksCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage the task catalog",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import <catalog.yaml>",
		Short: "Create catalog tasks that do not exist yet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := config.LoadTaskCatalog(args[0])
			if err != nil {
				return err
			}
			rt, err := bootstrap.Build(cmd.Context(), *cfg, slog.Default())
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.Migrate(cmd.Context()); err != nil {
				return err
			}
			created, err := rt.ImportTasks(cmd.Context(), specs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d tasks\n", created, len(specs))
			return nil
		},
	})
	return cmd
}
