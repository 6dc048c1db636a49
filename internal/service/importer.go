package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"quizarena/internal/model"
	"quizarena/pkg/apperr"
	"quizarena/pkg/logger"

	"github.com/xuri/excelize/v2"
)

// Spreadsheet columns: type | question | options | correct answer | points | hint.
// Options and ranking answers are separated by "|".
const (
	colType = iota
	colText
	colOptions
	colCorrect
	colPoints
	colHint
	minImportColumns = colPoints + 1
	listSeparator    = "|"
)

// ParseQuestionSheet reads question rows from the first sheet of an xlsx
// workbook. The first row is a header.
func ParseQuestionSheet(r io.Reader) ([]model.QuestionInput, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Validation("Invalid spreadsheet")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.Validation("Spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	inputs := make([]model.QuestionInput, 0, len(rows))
	for i, row := range rows {
		if i == 0 || blankRow(row) {
			continue
		}
		if len(row) < minImportColumns {
			return nil, apperr.Validation(fmt.Sprintf("Row %d: expected at least %d columns", i+1, minImportColumns))
		}
		points, err := strconv.Atoi(strings.TrimSpace(row[colPoints]))
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("Row %d: points must be a number", i+1))
		}

		in := model.QuestionInput{
			Type:    strings.TrimSpace(row[colType]),
			Text:    row[colText],
			Options: splitList(row[colOptions]),
			Points:  points,
		}
		if t, ok := model.ParseQuestionType(in.Type); ok && t == model.QuestionTypeRanking {
			in.CorrectAnswer = model.ListAnswer(splitList(row[colCorrect])...)
		} else {
			in.CorrectAnswer = model.TextAnswer(row[colCorrect])
		}
		if len(row) > colHint {
			in.Hint = row[colHint]
		}
		inputs = append(inputs, in)
	}
	if len(inputs) == 0 {
		return nil, apperr.Validation("Spreadsheet has no question rows")
	}
	return inputs, nil
}

// ImportQuestions validates every row before storing any of them.
func (s *QuizService) ImportQuestions(ctx context.Context, quizID, userID string, r io.Reader) (int, error) {
	quiz, err := s.ownedQuiz(ctx, quizID, userID)
	if err != nil {
		return 0, err
	}
	inputs, err := ParseQuestionSheet(r)
	if err != nil {
		return 0, err
	}
	if len(quiz.Questions)+len(inputs) > maxQuizQuestions {
		return 0, apperr.Validation(fmt.Sprintf("A quiz can have at most %d questions", maxQuizQuestions))
	}

	questions := make([]*model.Question, 0, len(inputs))
	for i, in := range inputs {
		q, err := BuildQuestion(quiz.ID, in)
		if err != nil {
			return 0, apperr.Validation(fmt.Sprintf("Row %d: %s", i+2, apperr.PublicMessage(err)))
		}
		questions = append(questions, q)
	}

	if err := s.questions.CreateMany(ctx, questions); err != nil {
		return 0, fmt.Errorf("failed to create questions: %w", err)
	}
	if err := s.attach(ctx, quiz.ID, questions); err != nil {
		return 0, err
	}

	logger.Info("questions imported", "quizId", quiz.ID, "count", len(questions))
	return len(questions), nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, listSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
