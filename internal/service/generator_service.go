package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quizarena/internal/config"
	"quizarena/internal/model"
	"quizarena/pkg/apperr"
	"quizarena/pkg/logger"
)

const maxCompletionBody = 1 << 20

// GeneratorService builds quizzes from a topic via an OpenAI-compatible
// chat completions endpoint
type GeneratorService struct {
	config  config.AIConfig
	client  *http.Client
	quizzes *QuizService
}

// NewGeneratorService creates a new generator service
func NewGeneratorService(cfg config.AIConfig, quizzes *QuizService) *GeneratorService {
	return &GeneratorService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
		quizzes: quizzes,
	}
}

// Generate asks the model for multiple-choice questions and stores them as a new quiz
func (s *GeneratorService) Generate(ctx context.Context, req model.GenerateQuizRequest) (*model.Quiz, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" || req.NumQuestions <= 0 {
		return nil, apperr.Validation("Topic and number of questions are required")
	}
	if req.NumQuestions > maxQuizQuestions {
		return nil, apperr.Validation(fmt.Sprintf("A quiz can have at most %d questions", maxQuizQuestions))
	}
	if !s.config.IsEnabled() {
		return nil, apperr.Unavailable("AI generation is not configured")
	}

	content, err := s.callChat(ctx, s.buildPrompt(topic, req.NumQuestions))
	if err != nil {
		logger.Error("AI generation failed", "topic", topic, "error", err)
		return nil, apperr.Wrap(err, apperr.CodeUnavailable, "AI generation failed")
	}
	generated, err := parseGeneratedQuestions(content)
	if err != nil {
		logger.Error("AI response could not be parsed", "topic", topic, "error", err)
		return nil, apperr.Wrap(err, apperr.CodeUnavailable, "AI generation failed")
	}
	if len(generated) > req.NumQuestions {
		generated = generated[:req.NumQuestions]
	}

	inputs := make([]model.QuestionInput, 0, len(generated))
	for i, g := range generated {
		points := 1
		if i < len(req.QuestionConfigs) && req.QuestionConfigs[i].Points > 0 {
			points = req.QuestionConfigs[i].Points
		}
		inputs = append(inputs, model.QuestionInput{
			Type:          string(model.QuestionTypeMCQ),
			Text:          g.QuestionText,
			Options:       g.Options,
			CorrectAnswer: model.TextAnswer(g.CorrectAnswer),
			Points:        points,
		})
	}

	return s.quizzes.CreateQuiz(ctx, model.CreateQuizRequest{
		Title:       topic,
		Description: fmt.Sprintf("AI generated quiz about %s", topic),
		Duration:    req.Duration,
		Questions:   inputs,
		CreatorID:   req.CreatorID,
	})
}

func (s *GeneratorService) buildPrompt(topic string, n int) string {
	return fmt.Sprintf(`Generate %d multiple-choice quiz questions about "%s".
Return ONLY a JSON array. Each item must have:
{"question_text": "...", "options": ["...", "...", "...", "..."], "correct_answer": "..."}
The correct_answer must be exactly one of the options.`, n, topic)
}

func (s *GeneratorService) callChat(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model": s.config.Model,
		"messages": []map[string]string{
			{"role": "system", "content": "You write quiz questions and answer with JSON only."},
			{"role": "user", "content": prompt},
		},
		"temperature": 0.7,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.CompletionsEndpoint(), bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCompletionBody))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completions endpoint returned %d", resp.StatusCode)
	}

	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", err
	}
	if len(chatResp.Choices) > 0 {
		return chatResp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("empty response from completions endpoint")
}

// parseGeneratedQuestions accepts a bare JSON array, optionally inside a
// markdown code fence.
func parseGeneratedQuestions(content string) ([]model.GeneratedQuestion, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var questions []model.GeneratedQuestion
	if err := json.Unmarshal([]byte(content), &questions); err != nil {
		return nil, fmt.Errorf("decode generated questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions generated")
	}
	return questions, nil
}
