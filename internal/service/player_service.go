package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quizarena/internal/metrics"
	"quizarena/internal/model"
	"quizarena/internal/repository"
	"quizarena/internal/security"
	"quizarena/pkg/apperr"
	"quizarena/pkg/logger"
)

// PlayerService handles player enrollment and player quiz records
type PlayerService struct {
	sessions      *SessionService
	playerQuizzes repository.PlayerQuizRepo
	users         repository.UserRepo
	broadcaster   Broadcaster
	metrics       *metrics.Metrics
	clock
}

// NewPlayerService creates a new player service
func NewPlayerService(
	sessions *SessionService,
	playerQuizzes repository.PlayerQuizRepo,
	users repository.UserRepo,
) *PlayerService {
	return &PlayerService{
		sessions:      sessions,
		playerQuizzes: playerQuizzes,
		users:         users,
		broadcaster:   noopBroadcaster{},
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *PlayerService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = orNoop(b)
}

// SetMetrics sets the metrics sink
func (s *PlayerService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// JoinByCode resolves a join code, expiring stale sessions, then enrolls the user
func (s *PlayerService) JoinByCode(ctx context.Context, code, userID string) (*model.PlayerQuiz, error) {
	session, err := s.sessions.ResolveByJoinCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.Join(ctx, session, userID)
}

// Join creates the user's player quiz for a session. The unique
// (session_id, player_id) index decides concurrent joins.
func (s *PlayerService) Join(ctx context.Context, session *model.Session, userID string) (*model.PlayerQuiz, error) {
	if userID == "" {
		return nil, apperr.Unauthorized("User authentication required")
	}

	existing, err := s.playerQuizzes.GetBySessionAndPlayer(ctx, session.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("Player already joined this session")
	}

	pq := &model.PlayerQuiz{
		SessionID: session.ID,
		QuizID:    session.QuizID,
		PlayerID:  userID,
		Score:     0,
		JoinedAt:  s.current(),
	}
	if user, err := s.users.GetByID(ctx, userID); err != nil {
		logger.Warn("failed to load joining user", "userId", userID, "error", err)
	} else if user != nil {
		pq.DisplayName = user.Username
	}

	if err := s.playerQuizzes.Create(ctx, pq); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("Player already joined this session")
		}
		return nil, fmt.Errorf("failed to create player quiz: %w", err)
	}

	s.metrics.PlayerJoined()
	s.broadcaster.BroadcastToHost(session.ID, MsgPlayerJoined, map[string]interface{}{
		"player_quiz_id": pq.ID,
		"displayName":    pq.DisplayName,
	})
	logger.Info("player joined", "sessionId", session.ID, "playerQuizId", pq.ID)
	return pq, nil
}

// Get returns a player quiz by id
func (s *PlayerService) Get(ctx context.Context, playerQuizID string) (*model.PlayerQuiz, error) {
	if strings.TrimSpace(playerQuizID) == "" {
		return nil, apperr.Validation("Player Quiz Id is required")
	}
	pq, err := s.playerQuizzes.GetByID(ctx, playerQuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player quiz: %w", err)
	}
	if pq == nil {
		return nil, apperr.NotFound("Player quiz not found")
	}
	return pq, nil
}

// UpdateSettings changes the display name and avatar shown on leaderboards
func (s *PlayerService) UpdateSettings(ctx context.Context, req model.PlayerSettingsRequest) (*model.PlayerQuiz, error) {
	if strings.TrimSpace(req.PlayerQuizID) == "" {
		return nil, apperr.Validation("PlayerQuizId is required")
	}
	pq, err := s.Get(ctx, req.PlayerQuizID)
	if err != nil {
		return nil, err
	}
	if pq.PlayerID != req.UserID {
		return nil, apperr.Forbidden("Player quiz belongs to another user")
	}

	displayName := security.SanitizeText(req.DisplayName, security.MaxNameLength)
	if displayName == "" {
		displayName = pq.DisplayName
	}
	avatar := security.SanitizeText(req.Avatar, security.MaxURLLength)
	if avatar == "" {
		avatar = pq.Avatar
	}

	if _, err := s.playerQuizzes.UpdateProfile(ctx, pq.ID, displayName, avatar); err != nil {
		return nil, fmt.Errorf("failed to update player quiz: %w", err)
	}
	pq.DisplayName = displayName
	pq.Avatar = avatar
	return pq, nil
}

// Enrollment returns the user's player quiz in a session, or nil when the
// user never joined it.
func (s *PlayerService) Enrollment(ctx context.Context, sessionID, userID string) (*model.PlayerQuiz, error) {
	pq, err := s.playerQuizzes.GetBySessionAndPlayer(ctx, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return pq, nil
}
