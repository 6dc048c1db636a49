package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"quizarena/internal/cache"
	"quizarena/internal/metrics"
	"quizarena/internal/model"
	"quizarena/internal/repository"
	"quizarena/pkg/apperr"
	"quizarena/pkg/logger"
)

const (
	joinCodeChars    = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	joinCodeLength   = 6
	maxCodeAttempts  = 10
	maxInsertRetries = 3
)

// SessionService handles session lifecycle operations
type SessionService struct {
	sessions        repository.SessionRepo
	quizzes         repository.QuizRepo
	questions       repository.QuestionRepo
	users           repository.UserRepo
	sessionCache    cache.SessionCache
	broadcaster     Broadcaster
	metrics         *metrics.Metrics
	defaultDuration int
	clock
}

// NewSessionService creates a new session service
func NewSessionService(
	sessions repository.SessionRepo,
	quizzes repository.QuizRepo,
	questions repository.QuestionRepo,
	users repository.UserRepo,
	sessionCache cache.SessionCache,
	defaultDuration int,
) *SessionService {
	return &SessionService{
		sessions:        sessions,
		quizzes:         quizzes,
		questions:       questions,
		users:           users,
		sessionCache:    sessionCache,
		broadcaster:     noopBroadcaster{},
		defaultDuration: defaultDuration,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = orNoop(b)
}

// SetMetrics sets the metrics sink
func (s *SessionService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Create starts a timed session of a quiz with a fresh join code
func (s *SessionService) Create(ctx context.Context, req model.CreateSessionRequest) (*model.Session, error) {
	if req.HostID == "" {
		return nil, apperr.Unauthorized("User authentication required")
	}
	if strings.TrimSpace(req.QuizID) == "" {
		return nil, apperr.Validation("Quiz Id is required")
	}
	if req.Duration < 0 {
		return nil, apperr.Validation("Duration must not be negative")
	}

	quiz, err := s.quizzes.GetByID(ctx, req.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz == nil {
		return nil, apperr.NotFound("Quiz not found")
	}

	duration := req.Duration
	if duration <= 0 {
		duration = quiz.Duration
	}
	if duration <= 0 {
		duration = s.defaultDuration
	}

	for attempt := 0; attempt < maxInsertRetries; attempt++ {
		code, err := s.generateJoinCode(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to generate join code: %w", err)
		}

		now := s.current()
		session := &model.Session{
			QuizID:    quiz.ID,
			HostID:    req.HostID,
			JoinCode:  code,
			Duration:  duration,
			StartTime: now,
			EndTime:   now.Add(time.Duration(duration) * time.Minute),
			IsActive:  true,
			CreatedAt: now,
		}

		// The unique index on join_code settles races the lookup missed.
		err = s.sessions.Create(ctx, session)
		if errors.Is(err, repository.ErrDuplicate) {
			logger.Warn("join code collision", "code", code, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}

		if err := s.sessionCache.Set(ctx, session); err != nil {
			logger.Warn("failed to cache session", "sessionId", session.ID, "error", err)
		}
		if err := s.users.AddHostedQuiz(ctx, req.HostID, quiz.ID); err != nil {
			logger.Warn("failed to record hosted quiz", "userId", req.HostID, "quizId", quiz.ID, "error", err)
		}
		s.metrics.SessionCreated()
		logger.Info("session created", "sessionId", session.ID, "quizId", quiz.ID, "duration", duration)
		return session, nil
	}

	return nil, fmt.Errorf("failed to generate unique join code")
}

// Rehost starts another session of an existing quiz
func (s *SessionService) Rehost(ctx context.Context, req model.RehostRequest) (*model.Session, error) {
	return s.Create(ctx, model.CreateSessionRequest(req))
}

// ResolveByJoinCode returns the joinable session behind a code. A session
// past its end time is deactivated before the expiry is reported.
func (s *SessionService) ResolveByJoinCode(ctx context.Context, code string) (*model.Session, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apperr.Validation("Join Code is required")
	}

	session, err := s.lookupByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.NotFound("Invalid join code")
	}

	if session.Expired(s.current()) {
		if session.IsActive {
			if _, err := s.sessions.Deactivate(ctx, session.ID, nil); err != nil {
				return nil, fmt.Errorf("failed to deactivate session: %w", err)
			}
			s.metrics.SessionExpired()
			logger.Info("session expired", "sessionId", session.ID)
		}
		s.dropCached(ctx, code)
		return nil, apperr.Validation("Session expired")
	}
	if !session.IsActive {
		s.dropCached(ctx, code)
		return nil, apperr.Validation("Session has ended")
	}
	return session, nil
}

// lookupByCode reads through the session cache. A hit only resolves the
// code; the stored document decides whether the session is still open, since
// an eviction that failed in End leaves an active copy behind.
func (s *SessionService) lookupByCode(ctx context.Context, code string) (*model.Session, error) {
	if cached, err := s.sessionCache.GetByCode(ctx, code); err == nil && cached != nil {
		session, err := s.sessions.GetByID(ctx, cached.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get session: %w", err)
		}
		if session == nil || !session.IsActive {
			s.dropCached(ctx, code)
		}
		return session, nil
	} else if err != nil {
		logger.Warn("session cache read failed", "code", code, "error", err)
	}

	session, err := s.sessions.GetByJoinCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session != nil && session.IsActive && !session.Expired(s.current()) {
		if err := s.sessionCache.Set(ctx, session); err != nil {
			logger.Warn("failed to cache session", "sessionId", session.ID, "error", err)
		}
	}
	return session, nil
}

func (s *SessionService) dropCached(ctx context.Context, code string) {
	if err := s.sessionCache.Delete(ctx, code); err != nil {
		logger.Warn("failed to evict session", "code", code, "error", err)
	}
}

// Get returns a session by id
func (s *SessionService) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperr.Validation("Session Id is required")
	}
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, apperr.NotFound("Session not found")
	}
	return session, nil
}

// End lets the host close a session early. Ending twice is a no-op.
func (s *SessionService) End(ctx context.Context, sessionID, hostID string) (*model.Session, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.HostID != hostID {
		return nil, apperr.Forbidden("Only the host can end this session")
	}

	now := s.current()
	changed, err := s.sessions.Deactivate(ctx, session.ID, &now)
	if err != nil {
		return nil, fmt.Errorf("failed to end session: %w", err)
	}
	s.dropCached(ctx, session.JoinCode)
	if !changed {
		return session, nil
	}

	session.IsActive = false
	session.EndedAt = &now
	s.broadcaster.BroadcastToPlayers(session.ID, MsgSessionEnded, map[string]interface{}{
		"session_id": session.ID,
		"ended_at":   now,
	})
	s.broadcaster.BroadcastToHost(session.ID, MsgSessionEnded, map[string]interface{}{
		"session_id": session.ID,
		"ended_at":   now,
	})
	s.broadcaster.DisconnectSession(session.ID)
	logger.Info("session ended", "sessionId", session.ID, "hostId", hostID)
	return session, nil
}

// ListByQuiz lists the sessions of a quiz for its creator, newest first
func (s *SessionService) ListByQuiz(ctx context.Context, quizID, userID string) ([]*model.Session, error) {
	if strings.TrimSpace(quizID) == "" {
		return nil, apperr.Validation("Quiz Id is required")
	}
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz == nil {
		return nil, apperr.NotFound("Quiz not found")
	}
	if quiz.CreatorID != userID {
		return nil, apperr.Forbidden("Only the quiz creator can list its sessions")
	}
	sessions, err := s.sessions.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// PlayView returns what a player needs to take the quiz, without answers
func (s *SessionService) PlayView(ctx context.Context, sessionID string) (*model.SessionPlayView, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	quiz, err := s.quizzes.GetByID(ctx, session.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz == nil {
		return nil, apperr.NotFound("Quiz not found")
	}
	questions, err := loadOrdered(ctx, s.questions, quiz)
	if err != nil {
		return nil, err
	}

	public := make([]model.PublicQuestion, len(questions))
	for i, q := range questions {
		public[i] = q.Public()
	}
	return &model.SessionPlayView{
		Success:   true,
		SessionID: session.ID,
		Quiz: model.QuizSummary{
			ID:          quiz.ID,
			Title:       quiz.Title,
			Description: quiz.Description,
			TotalPoints: quiz.TotalPoints,
		},
		Questions: public,
		Duration:  session.Duration,
		StartTime: session.StartTime,
		EndTime:   session.EndTime,
		IsActive:  session.IsActive && !session.Expired(s.current()),
	}, nil
}

// generateJoinCode creates a 6-char alphanumeric code not used by any session
func (s *SessionService) generateJoinCode(ctx context.Context) (string, error) {
	for attempts := 0; attempts < maxCodeAttempts; attempts++ {
		b := make([]byte, joinCodeLength)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}

		code := make([]byte, joinCodeLength)
		for i := range code {
			code[i] = joinCodeChars[int(b[i])%len(joinCodeChars)]
		}
		codeStr := string(code)

		existing, err := s.sessions.GetByJoinCode(ctx, codeStr)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return codeStr, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique join code")
}
