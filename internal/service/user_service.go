package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quizarena/internal/model"
	"quizarena/internal/repository"
	"quizarena/internal/security"
	"quizarena/pkg/apperr"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultLeaderboardSize = 10
	maxQuizQuestions       = security.MaxQuestionsLimit
)

// UserService handles accounts and the global points ranking
type UserService struct {
	users repository.UserRepo
	auth  *AuthService
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepo, auth *AuthService) *UserService {
	return &UserService{users: users, auth: auth}
}

// Signup registers a new account with a bcrypt password hash
func (s *UserService) Signup(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	username := security.SanitizeText(req.Username, security.MaxNameLength)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" || req.Password == "" {
		return nil, apperr.Validation("All fields are required")
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("User already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login checks credentials and returns a signed token
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperr.Validation("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	token, err := s.auth.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: token, UserID: user.ID}, nil
}

// Profile returns the user's own account
func (s *UserService) Profile(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, apperr.Unauthorized("User authentication required")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}
	return user, nil
}

// GlobalLeaderboard ranks users by accumulated points
func (s *UserService) GlobalLeaderboard(ctx context.Context, limit int) ([]model.UserRanking, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultLeaderboardSize
	}
	users, err := s.users.TopByPoints(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	rankings := make([]model.UserRanking, len(users))
	for i, u := range users {
		rankings[i] = model.UserRanking{
			Rank:        i + 1,
			UserID:      u.ID,
			Username:    u.Username,
			TotalPoints: u.TotalPoints,
		}
	}
	return rankings, nil
}
