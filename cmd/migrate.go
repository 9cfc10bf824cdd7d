package cmd

import (
	"fmt"

	"travel-booking/pkg/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			applied, err := database.Migrate(cmd.Context(), rt.db)
			if err != nil {
				return err
			}
			for _, name := range applied {
				rt.logger.Info("Applied migration", zap.String("file", name))
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
