package cmd

import (
	"fmt"
	"log"
	"os"

	"travel-booking/internal/data/repository"
	"travel-booking/pkg/database"
	"travel-booking/pkg/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runtime holds what every subcommand needs once config is loaded.
type runtime struct {
	config *utils.Config
	logger *zap.Logger
	db     database.PgxIface
}

func (rt *runtime) close() {
	if rt.db != nil {
		rt.db.Close()
	}
	if rt.logger != nil {
		_ = rt.logger.Sync()
	}
}

func (rt *runtime) repository() *repository.Repository {
	return repository.NewRepository(rt.db, rt.logger)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "travel-booking: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rt := &runtime{}
	root := &cobra.Command{
		Use:           "travel-booking",
		Short:         "Trip booking, wallet ledger and scheduled jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return rt.open()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			rt.close()
		},
	}

	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(newServeCommand(rt), newJobCommand(rt), newMigrateCommand(rt))
	return root
}

// open loads config, then the logger, then the database pool.
func (rt *runtime) open() error {
	config, err := utils.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	rt.config = config

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using production logger.", err)
		logger, _ = zap.NewProduction()
	}
	rt.logger = logger

	db, err := database.InitDB(config.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	rt.db = db

	logger.Info("Database connected successfully")
	return nil
}
