package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"travel-booking/internal/usecase"
	"travel-booking/pkg/notify"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newJobCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:       "job <name>",
		Short:     "Run one maintenance job and print its summary",
		Long:      "Run one maintenance job in-process. Jobs: " + strings.Join(usecase.JobNames, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: usecase.JobNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			sender := notify.NewSender(rt.config.WhatsApp, rt.logger)
			service := usecase.NewService(rt.repository(), rt.config, sender, time.Now, rt.logger)

			summary, err := service.Job.Run(cmd.Context(), args[0])
			if err != nil {
				rt.logger.Error("Job failed", zap.String("job", args[0]), zap.Error(err))
				return err
			}

			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return fmt.Errorf("encode summary: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
