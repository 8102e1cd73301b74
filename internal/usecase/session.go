package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Discdoor/dd-auth/internal/core/domain"
	"github.com/Discdoor/dd-auth/internal/core/port"
	"github.com/Discdoor/dd-auth/internal/infra/security"
	"github.com/Discdoor/dd-auth/internal/repository"
)

// SessionService manages bearer-session lifecycle: creation, lookup with lazy
// reclamation of expired rows, and sliding-window validation.
type SessionService struct {
	sessions  port.SessionRepository
	events    port.EventPublisher
	logger    *zap.Logger
	maxAge    time.Duration
	keyLength int
	now       func() time.Time
}

// NewSessionService constructs SessionService.
func NewSessionService(sessions port.SessionRepository, events port.EventPublisher, maxAge time.Duration, keyByteLength int, log *zap.Logger) *SessionService {
	if log == nil {
		log = zap.NewNop()
	}
	if maxAge <= 0 {
		maxAge = 720 * time.Hour
	}
	if keyByteLength <= 0 {
		keyByteLength = 32
	}
	return &SessionService{
		sessions:  sessions,
		events:    events,
		logger:    log,
		maxAge:    maxAge,
		keyLength: keyByteLength,
		now:       time.Now,
	}
}

// WithClock overrides the time source, primarily for tests.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	if now != nil {
		s.now = now
	}
	return s
}

// Create purges the user's expired sessions, then mints a fresh key. Existing
// live sessions are untouched, so one account may hold several.
func (s *SessionService) Create(ctx context.Context, user domain.User) (domain.Session, error) {
	var zero domain.Session
	if user.ID == "" {
		return zero, fmt.Errorf("%w: user id is required", ErrValidation)
	}

	at := s.now().UTC()
	purged, err := s.sessions.DeleteExpiredForUser(ctx, user.ID, at)
	if err != nil {
		return zero, fmt.Errorf("purge expired sessions: %w", err)
	}
	if purged > 0 {
		s.logger.Debug("purged expired sessions",
			zap.String("user_id", user.ID),
			zap.Int64("count", purged))
	}

	key, err := security.GenerateSessionKey(s.keyLength)
	if err != nil {
		return zero, fmt.Errorf("generate session key: %w", err)
	}

	session := domain.Session{
		Key:       key,
		UserID:    user.ID,
		CreatedAt: at,
		Expiry:    at.Add(s.maxAge),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return zero, fmt.Errorf("create session: %w", err)
	}

	if s.events != nil {
		event := domain.SessionCreatedEvent{
			UserID:    user.ID,
			CreatedAt: session.CreatedAt,
			Expiry:    session.Expiry,
			Purged:    int(purged),
		}
		if err := s.events.PublishSessionCreated(ctx, event); err != nil {
			s.logger.Warn("publish session created event", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	return session, nil
}

// Get resolves a key to its live session. An expired row is deleted on the
// spot and reported as not found. The expiry is not extended here.
func (s *SessionService) Get(ctx context.Context, key string) (*domain.Session, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: session key is required", ErrValidation)
	}
	session, err := s.sessions.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if !session.IsAlive(s.now()) {
		if err := s.sessions.DeleteByKey(ctx, key); err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("reclaim expired session", zap.Error(err))
		}
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Validate reports whether the key maps to a live session and, when it does,
// slides the expiry forward by the configured lifetime.
func (s *SessionService) Validate(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, fmt.Errorf("%w: session key is required", ErrValidation)
	}
	session, err := s.sessions.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get session: %w", err)
	}
	at := s.now()
	if !session.IsAlive(at) {
		return false, nil
	}
	if err := s.sessions.ExtendExpiry(ctx, key, at.UTC().Add(s.maxAge)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("extend session: %w", err)
	}
	return true, nil
}

// Delete removes the session for the given key.
func (s *SessionService) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("%w: session key is required", ErrValidation)
	}
	if err := s.sessions.DeleteByKey(ctx, key); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
