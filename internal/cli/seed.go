package cli

import (
	"context"
	"fmt"

	"quizarena/internal/model"
	"quizarena/internal/repository"
	"quizarena/internal/service"
	"quizarena/pkg/apperr"
	"quizarena/pkg/logger"

	"github.com/spf13/cobra"
)

const (
	demoEmail    = "demo-host@quizarena.local"
	demoPassword = "demo-password"
)

// NewSeedCmd creates a demo host account and a sample quiz.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create a demo host and sample quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunSeed(cmd.Context(), *configPath)
		},
	}
}

// RunSeed is idempotent for the demo account; each run adds a new quiz.
func RunSeed(ctx context.Context, configPath string) error {
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

	users := repository.NewUserRepo(db)
	userSvc := service.NewUserService(users, service.NewAuthService(cfg.Auth.JWTSecret, 0))
	quizSvc := service.NewQuizService(repository.NewQuizRepo(db), repository.NewQuestionRepo(db), users)

	host, err := userSvc.Signup(ctx, model.SignupRequest{
		Username: "demo-host",
		Email:    demoEmail,
		Password: demoPassword,
	})
	if apperr.Is(err, apperr.CodeConflict) {
		host, err = users.GetByEmail(ctx, demoEmail)
	}
	if err != nil {
		return fmt.Errorf("failed to create demo host: %w", err)
	}

	quiz, err := quizSvc.CreateQuiz(ctx, model.CreateQuizRequest{
		Title:       "World Geography",
		Description: "Capitals, rivers and a little ordering",
		Duration:    10,
		CreatorID:   host.ID,
		Questions: []model.QuestionInput{
			{
				Type:          string(model.QuestionTypeMCQ),
				Text:          "What is the capital of Australia?",
				Options:       []string{"Sydney", "Melbourne", "Canberra", "Perth"},
				CorrectAnswer: model.TextAnswer("Canberra"),
				Points:        3,
			},
			{
				Type:          string(model.QuestionTypeShortAnswer),
				Text:          "Which river flows through Cairo?",
				CorrectAnswer: model.TextAnswer("Nile"),
				Points:        2,
				Hint:          "The longest river in Africa",
			},
			{
				Type:          string(model.QuestionTypeRanking),
				Text:          "Order these countries by area, largest first",
				Options:       []string{"Russia", "Canada", "China", "Brazil"},
				CorrectAnswer: model.ListAnswer("Russia", "Canada", "China", "Brazil"),
				Points:        5,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create demo quiz: %w", err)
	}

	logger.Info("seeded demo data",
		"email", demoEmail,
		"password", demoPassword,
		"userId", host.ID,
		"quizId", quiz.ID,
	)
	return nil
}
