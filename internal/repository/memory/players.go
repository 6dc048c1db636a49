package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"quizarena/internal/model"
	"quizarena/internal/repository"
)

type PlayerQuizRepo struct {
	mu    sync.RWMutex
	items map[string]model.PlayerQuiz
}

var _ repository.PlayerQuizRepo = (*PlayerQuizRepo)(nil)

func (r *PlayerQuizRepo) Create(_ context.Context, pq *model.PlayerQuiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.SessionID == pq.SessionID && existing.PlayerID == pq.PlayerID {
			return repository.ErrDuplicate
		}
	}
	if pq.ID == "" {
		pq.ID = repository.NewID()
	}
	if pq.JoinedAt.IsZero() {
		pq.JoinedAt = time.Now()
	}
	r.items[pq.ID] = *pq
	return nil
}

func (r *PlayerQuizRepo) GetByID(_ context.Context, id string) (*model.PlayerQuiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pq, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &pq, nil
}

func (r *PlayerQuizRepo) GetByIDs(_ context.Context, ids []string) ([]*model.PlayerQuiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.PlayerQuiz{}
	for _, id := range ids {
		if pq, ok := r.items[id]; ok {
			out = append(out, &pq)
		}
	}
	return out, nil
}

func (r *PlayerQuizRepo) GetBySessionAndPlayer(_ context.Context, sessionID, playerID string) (*model.PlayerQuiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, pq := range r.items {
		if pq.SessionID == sessionID && pq.PlayerID == playerID {
			pq := pq
			return &pq, nil
		}
	}
	return nil, nil
}

func (r *PlayerQuizRepo) ListCompletedBySession(_ context.Context, sessionID string) ([]*model.PlayerQuiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.PlayerQuiz{}
	for _, pq := range r.items {
		if pq.SessionID == sessionID && pq.CompletedAt != nil {
			pq := pq
			out = append(out, &pq)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CompletedAt.Before(*out[j].CompletedAt)
	})
	return out, nil
}

func (r *PlayerQuizRepo) CountCompletedBySession(_ context.Context, sessionID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, pq := range r.items {
		if pq.SessionID == sessionID && pq.CompletedAt != nil {
			n++
		}
	}
	return n, nil
}

func (r *PlayerQuizRepo) UpdateScore(_ context.Context, id string, score int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pq, ok := r.items[id]
	if !ok || pq.CompletedAt != nil {
		return false, nil
	}
	pq.Score = score
	r.items[id] = pq
	return true, nil
}

func (r *PlayerQuizRepo) MarkCompleted(_ context.Context, id string, score int, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pq, ok := r.items[id]
	if !ok || pq.CompletedAt != nil {
		return false, nil
	}
	pq.Score = score
	pq.CompletedAt = &at
	r.items[id] = pq
	return true, nil
}

func (r *PlayerQuizRepo) UpdateProfile(_ context.Context, id, displayName, avatar string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pq, ok := r.items[id]
	if !ok {
		return false, nil
	}
	if displayName != "" {
		pq.DisplayName = displayName
	}
	if avatar != "" {
		pq.Avatar = avatar
	}
	r.items[id] = pq
	return true, nil
}

type AnswerRepo struct {
	mu    sync.RWMutex
	items map[string]model.Answer // keyed by player quiz id + question id

	// Calls counts UpsertMany invocations.
	Calls int
}

var _ repository.AnswerRepo = (*AnswerRepo)(nil)

func answerKey(playerQuizID, questionID string) string {
	return playerQuizID + "\x00" + questionID
}

func (r *AnswerRepo) UpsertMany(_ context.Context, answers []*model.Answer) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	for _, a := range answers {
		key := answerKey(a.PlayerQuizID, a.QuestionID)
		if existing, ok := r.items[key]; ok {
			a.ID = existing.ID
		} else if a.ID == "" {
			a.ID = repository.NewID()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now()
		}
		r.items[key] = *a
	}
	return len(answers), nil
}

func (r *AnswerRepo) ListByPlayerQuiz(_ context.Context, playerQuizID string) ([]*model.Answer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.Answer{}
	for key, a := range r.items {
		if strings.HasPrefix(key, playerQuizID+"\x00") {
			a := a
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (r *AnswerRepo) SumPoints(_ context.Context, playerQuizID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, a := range r.items {
		if a.PlayerQuizID == playerQuizID {
			total += a.Points
		}
	}
	return total, nil
}

type UserRepo struct {
	mu    sync.RWMutex
	items map[string]model.User
}

var _ repository.UserRepo = (*UserRepo)(nil)

func (r *UserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = repository.NewID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Badges == nil {
		user.Badges = []model.Badge{}
	}
	if user.HostedQuizzes == nil {
		user.HostedQuizzes = []string{}
	}
	r.items[user.ID] = cloneUser(*user)
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	u = cloneUser(u)
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.items {
		if u.Email == email {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.items {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepo) AddHostedQuiz(_ context.Context, userID, quizID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[userID]
	if !ok {
		return nil
	}
	for _, id := range u.HostedQuizzes {
		if id == quizID {
			return nil
		}
	}
	u.HostedQuizzes = append(append([]string{}, u.HostedQuizzes...), quizID)
	r.items[userID] = u
	return nil
}

func (r *UserRepo) IncrementTotalPoints(_ context.Context, userID string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.TotalPoints += delta
	r.items[userID] = u
	return nil
}

func (r *UserRepo) TopByPoints(_ context.Context, limit int) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.User{}
	for _, u := range r.items {
		u = cloneUser(u)
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].Username < out[j].Username
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cloneUser(u model.User) model.User {
	u.HostedQuizzes = append([]string{}, u.HostedQuizzes...)
	u.Badges = append([]model.Badge{}, u.Badges...)
	return u
}
