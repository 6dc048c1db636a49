package cli

import (
	"context"

	"quizarena/internal/repository"
	"quizarena/pkg/logger"

	"github.com/spf13/cobra"
)

// NewIndexesCmd creates the MongoDB indexes the repositories rely on.
func NewIndexesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create MongoDB indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndexes(cmd.Context(), *configPath)
		},
	}
}

func runIndexes(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	client, db, err := connectMongo(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	if err := repository.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	logger.Info("indexes ensured", "database", cfg.Mongo.Database)
	return nil
}
