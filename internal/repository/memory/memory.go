// Package memory holds in-process implementations of the repository
// interfaces. They enforce the same unique constraints as the Mongo indexes.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quizarena/internal/model"
	"quizarena/internal/repository"
)

// Store bundles one in-memory repository per collection.
type Store struct {
	Quizzes       *QuizRepo
	Questions     *QuestionRepo
	Sessions      *SessionRepo
	PlayerQuizzes *PlayerQuizRepo
	Answers       *AnswerRepo
	Users         *UserRepo
}

func NewStore() *Store {
	return &Store{
		Quizzes:       &QuizRepo{items: map[string]model.Quiz{}},
		Questions:     &QuestionRepo{items: map[string]model.Question{}},
		Sessions:      &SessionRepo{items: map[string]model.Session{}},
		PlayerQuizzes: &PlayerQuizRepo{items: map[string]model.PlayerQuiz{}},
		Answers:       &AnswerRepo{items: map[string]model.Answer{}},
		Users:         &UserRepo{items: map[string]model.User{}},
	}
}

type QuizRepo struct {
	mu    sync.RWMutex
	items map[string]model.Quiz
}

var _ repository.QuizRepo = (*QuizRepo)(nil)

func (r *QuizRepo) Create(_ context.Context, quiz *model.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if quiz.ID == "" {
		quiz.ID = repository.NewID()
	}
	if _, ok := r.items[quiz.ID]; ok {
		return repository.ErrDuplicate
	}
	now := time.Now()
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = now
	}
	quiz.UpdatedAt = now
	if quiz.Questions == nil {
		quiz.Questions = []string{}
	}
	r.items[quiz.ID] = cloneQuiz(*quiz)
	return nil
}

func (r *QuizRepo) GetByID(_ context.Context, id string) (*model.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	q = cloneQuiz(q)
	return &q, nil
}

func (r *QuizRepo) ListByCreator(_ context.Context, creatorID string) ([]*model.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.Quiz{}
	for _, q := range r.items {
		if q.CreatorID == creatorID {
			c := cloneQuiz(q)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *QuizRepo) AppendQuestion(_ context.Context, quizID, questionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.items[quizID]
	if !ok {
		return nil
	}
	q.Questions = append(append([]string{}, q.Questions...), questionID)
	q.UpdatedAt = time.Now()
	r.items[quizID] = q
	return nil
}

func (r *QuizRepo) SetTotalPoints(_ context.Context, quizID string, total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.items[quizID]; ok {
		q.TotalPoints = total
		r.items[quizID] = q
	}
	return nil
}

func cloneQuiz(q model.Quiz) model.Quiz {
	q.Questions = append([]string{}, q.Questions...)
	return q
}

type QuestionRepo struct {
	mu    sync.RWMutex
	items map[string]model.Question
}

var _ repository.QuestionRepo = (*QuestionRepo)(nil)

func (r *QuestionRepo) Create(ctx context.Context, question *model.Question) error {
	return r.CreateMany(ctx, []*model.Question{question})
}

func (r *QuestionRepo) CreateMany(_ context.Context, questions []*model.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range questions {
		if q.ID == "" {
			q.ID = repository.NewID()
		}
		if _, ok := r.items[q.ID]; ok {
			return repository.ErrDuplicate
		}
		if q.CreatedAt.IsZero() {
			q.CreatedAt = time.Now()
		}
		r.items[q.ID] = *q
	}
	return nil
}

func (r *QuestionRepo) GetByID(_ context.Context, id string) (*model.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (r *QuestionRepo) GetByIDs(_ context.Context, ids []string) ([]*model.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.Question{}
	for _, id := range ids {
		if q, ok := r.items[id]; ok {
			out = append(out, &q)
		}
	}
	return out, nil
}

func (r *QuestionRepo) ListByQuiz(_ context.Context, quizID string) ([]*model.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.Question{}
	for _, q := range r.items {
		if q.QuizID == quizID {
			q := q
			out = append(out, &q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *QuestionRepo) SumPointsByQuiz(_ context.Context, quizID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, q := range r.items {
		if q.QuizID == quizID {
			total += q.Points
		}
	}
	return total, nil
}

type SessionRepo struct {
	mu    sync.RWMutex
	items map[string]model.Session
}

var _ repository.SessionRepo = (*SessionRepo)(nil)

func (r *SessionRepo) Create(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.items {
		if s.JoinCode == session.JoinCode {
			return repository.ErrDuplicate
		}
	}
	if session.ID == "" {
		session.ID = repository.NewID()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	r.items[session.ID] = *session
	return nil
}

func (r *SessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *SessionRepo) GetByJoinCode(_ context.Context, code string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.items {
		if s.JoinCode == code {
			s := s
			return &s, nil
		}
	}
	return nil, nil
}

func (r *SessionRepo) ListByQuiz(_ context.Context, quizID string) ([]*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.Session{}
	for _, s := range r.items {
		if s.QuizID == quizID {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *SessionRepo) Deactivate(_ context.Context, id string, endedAt *time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok || !s.IsActive {
		return false, nil
	}
	s.IsActive = false
	if endedAt != nil {
		at := *endedAt
		s.EndedAt = &at
	}
	r.items[id] = s
	return true, nil
}
