package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Discdoor/dd-auth/internal/core/domain"
	"github.com/Discdoor/dd-auth/internal/infra/logger"
	"github.com/Discdoor/dd-auth/internal/infra/security"
)

// weakPasswordScore is the zxcvbn score below which the registration result
// carries a strength warning. The score never gates creation; the length
// rules alone do that.
const weakPasswordScore = 2

// RegistrationResult bundles the created account, its first session and the
// advisory password strength feedback surfaced to the client.
type RegistrationResult struct {
	User          domain.User
	Session       domain.Session
	PasswordScore int
	PasswordWeak  bool
}

// AuthService composes the account registry and session manager into the
// register/login/logout flow exposed over HTTP.
type AuthService struct {
	users    *UserService
	sessions *SessionService
	logger   *zap.Logger
}

// NewAuthService constructs AuthService.
func NewAuthService(users *UserService, sessions *SessionService, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{users: users, sessions: sessions, logger: log}
}

// Register creates the account and immediately opens a session for it. The
// returned result includes the advisory strength score for the chosen
// password so callers can nudge the user toward a better one.
func (s *AuthService) Register(ctx context.Context, input CreateUserInput) (RegistrationResult, error) {
	var zero RegistrationResult

	user, err := s.users.CreateUser(ctx, input)
	if err != nil {
		return zero, err
	}
	session, err := s.sessions.Create(ctx, user)
	if err != nil {
		return zero, fmt.Errorf("open session for new user: %w", err)
	}
	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("tag", logger.MaskString(user.Tag())))

	score := security.PasswordStrength(input.Password, input.Username, input.Email)
	return RegistrationResult{
		User:          user,
		Session:       session,
		PasswordScore: score,
		PasswordWeak:  score < weakPasswordScore,
	}, nil
}

// Login authenticates by email and password. Unknown addresses and wrong
// passwords collapse into the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, domain.Session, error) {
	var zeroUser domain.User
	var zeroSession domain.Session

	email = strings.TrimSpace(email)
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrValidation) {
			return zeroUser, zeroSession, ErrInvalidCredentials
		}
		return zeroUser, zeroSession, err
	}

	ok, err := s.users.VerifyPassword(user, password)
	if err != nil {
		return zeroUser, zeroSession, err
	}
	if !ok {
		s.logger.Info("login rejected", zap.String("email", logger.MaskEmail(email)))
		return zeroUser, zeroSession, ErrInvalidCredentials
	}

	user, err = s.users.UpdateLoginDate(ctx, user)
	if err != nil {
		return zeroUser, zeroSession, err
	}

	session, err := s.sessions.Create(ctx, user)
	if err != nil {
		return zeroUser, zeroSession, err
	}
	s.logger.Info("user logged in", zap.String("user_id", user.ID))
	return user, session, nil
}

// Logout destroys the session identified by the bearer key.
func (s *AuthService) Logout(ctx context.Context, key string) error {
	return s.sessions.Delete(ctx, key)
}
