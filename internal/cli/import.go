package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"quizarena/internal/repository"
	"quizarena/internal/service"
	"quizarena/pkg/logger"

	"github.com/spf13/cobra"
)

// NewImportCmd appends questions from an .xlsx sheet to an existing quiz.
func NewImportCmd(configPath *string) *cobra.Command {
	var quizID, userID string

	cmd := &cobra.Command{
		Use:   "import-questions <file.xlsx>",
		Short: "Import questions from a spreadsheet into a quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if quizID == "" || userID == "" {
				return errors.New("--quiz and --user are required")
			}
			return runImport(cmd.Context(), *configPath, quizID, userID, args[0])
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz", "", "id of the quiz to extend")
	cmd.Flags().StringVar(&userID, "user", "", "id of the quiz creator")
	return cmd
}

func runImport(ctx context.Context, configPath, quizID, userID, path string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	client, db, err := connectMongo(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	quizSvc := service.NewQuizService(repository.NewQuizRepo(db), repository.NewQuestionRepo(db), repository.NewUserRepo(db))
	n, err := quizSvc.ImportQuestions(ctx, quizID, userID, f)
	if err != nil {
		return err
	}
	logger.Info("questions imported", "quizId", quizID, "count", n)
	return nil
}
