// Package grading decides whether a submitted answer is correct.
package grading

import (
	"strings"

	"quizarena/internal/model"
)

// Grade compares submitted against the question's correct answer.
// Text types match trimmed and case-insensitively; Ranking must match
// element by element in the same positions. Unknown types and answers of
// the wrong shape are incorrect.
func Grade(q *model.Question, submitted model.AnswerValue) bool {
	if q == nil {
		return false
	}
	switch q.Type {
	case model.QuestionTypeMCQ, model.QuestionTypeShortAnswer, model.QuestionTypeImage:
		if submitted.IsList || q.CorrectAnswer.IsList {
			return false
		}
		return equalFold(submitted.Text, q.CorrectAnswer.Text)
	case model.QuestionTypeRanking:
		if !submitted.IsList || !q.CorrectAnswer.IsList {
			return false
		}
		return rankingMatches(submitted.List, q.CorrectAnswer.List)
	default:
		return false
	}
}

// Points returns the points awarded for a graded answer.
func Points(q *model.Question, correct bool) int {
	if !correct || q == nil {
		return 0
	}
	return q.Points
}

func rankingMatches(submitted, correct []string) bool {
	if len(submitted) != len(correct) {
		return false
	}
	for i := range correct {
		if !equalFold(submitted[i], correct[i]) {
			return false
		}
	}
	return true
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
