package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Discdoor/dd-auth/internal/core/domain"
	"github.com/Discdoor/dd-auth/internal/core/port"
	"github.com/Discdoor/dd-auth/internal/infra/config"
	"github.com/Discdoor/dd-auth/internal/infra/logger"
	"github.com/Discdoor/dd-auth/internal/infra/security"
	"github.com/Discdoor/dd-auth/internal/repository"
)

// allocateAttempts bounds the retry loop when two registrations race for the
// same username/discriminant pair.
const allocateAttempts = 3

// CreateUserInput captures the payload for account creation.
type CreateUserInput struct {
	Email       string
	Username    string
	Password    string
	DateOfBirth time.Time
	Bot         bool
}

// UserService handles account lifecycle operations.
type UserService struct {
	users    port.UserRepository
	cache    port.UserCache
	events   port.EventPublisher
	hasher   *security.Hasher
	accounts config.AccountSettings
	algo     string
	logger   *zap.Logger
	now      func() time.Time
}

// NewUserService constructs UserService.
func NewUserService(users port.UserRepository, cache port.UserCache, events port.EventPublisher, hasher *security.Hasher, accounts config.AccountSettings, algo string, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	if algo == "" {
		algo = security.AlgoBcrypt
	}
	return &UserService{
		users:    users,
		cache:    cache,
		events:   events,
		hasher:   hasher,
		accounts: accounts,
		algo:     algo,
		logger:   log,
		now:      time.Now,
	}
}

// WithClock overrides the time source, primarily for tests.
func (s *UserService) WithClock(now func() time.Time) *UserService {
	if now != nil {
		s.now = now
	}
	return s
}

// CreateUser validates the payload, allocates a discriminant, hashes the
// credential and persists the new account.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (domain.User, error) {
	var zero domain.User

	username := strings.TrimSpace(input.Username)
	if err := validateUsername(username, s.accounts); err != nil {
		return zero, err
	}
	if err := validatePassword(input.Password, s.accounts); err != nil {
		return zero, err
	}
	if input.DateOfBirth.IsZero() {
		return zero, fmt.Errorf("%w: date of birth is required", ErrValidation)
	}

	email := strings.TrimSpace(input.Email)
	if email != "" {
		if err := validateEmail(email, s.accounts); err != nil {
			return zero, err
		}
		if _, err := s.users.GetByEmail(ctx, email); err == nil {
			return zero, ErrEmailTaken
		} else if !errors.Is(err, repository.ErrNotFound) {
			return zero, fmt.Errorf("check email availability: %w", err)
		}
	}

	if score := security.PasswordStrength(input.Password, username, email); score < weakPasswordScore {
		s.logger.Debug("weak password accepted at registration",
			zap.String("username", username),
			zap.Int("strength_score", score))
	}

	hash, err := s.hasher.Hash(input.Password, s.algo)
	if err != nil {
		return zero, fmt.Errorf("hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return zero, fmt.Errorf("generate user id: %w", err)
	}

	status := domain.VerificationNone
	var emailPtr *string
	if email != "" {
		status = domain.VerificationPending
		emailPtr = &email
	}

	user := domain.User{
		ID:           id.String(),
		Bot:          input.Bot,
		Username:     username,
		Email:        emailPtr,
		Phone:        s.accounts.DefaultPhone,
		AvatarURL:    s.accounts.DefaultAvatarURL,
		PasswordHash: hash,
		PasswordAlgo: s.algo,
		Status:       status,
		CreationDate: s.now().UTC(),
		DateOfBirth:  input.DateOfBirth,
	}

	for attempt := 0; attempt < allocateAttempts; attempt++ {
		discriminant, err := s.allocateDiscriminant(ctx, username)
		if err != nil {
			return zero, err
		}
		user.Discriminant = discriminant

		err = s.users.Create(ctx, user)
		if err == nil {
			s.afterWrite(ctx, user)
			s.publishRegistered(ctx, user)
			return user, nil
		}
		if errors.Is(err, repository.ErrDuplicateKey) {
			if strings.Contains(err.Error(), "email") {
				return zero, ErrEmailTaken
			}
			// Lost the race for this discriminant; draw again.
			continue
		}
		return zero, fmt.Errorf("create user: %w", err)
	}

	return zero, fmt.Errorf("create user %q: %w", logger.MaskString(username), domain.ErrDiscriminantsExhausted)
}

// GetUserByID fetches an account by its opaque identifier.
func (s *UserService) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	var zero domain.User
	id = strings.TrimSpace(id)
	if id == "" {
		return zero, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return zero, ErrUserNotFound
		}
		return zero, fmt.Errorf("get user by id: %w", err)
	}
	return *user, nil
}

// GetUserByEmail fetches an account by email address.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var zero domain.User
	email = strings.TrimSpace(email)
	if err := validateEmail(email, s.accounts); err != nil {
		return zero, err
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return zero, ErrUserNotFound
		}
		return zero, fmt.Errorf("get user by email: %w", err)
	}
	return *user, nil
}

// GetUserByTag fetches an account by its username + discriminant pair.
func (s *UserService) GetUserByTag(ctx context.Context, username, discriminant string) (domain.User, error) {
	var zero domain.User
	username = strings.TrimSpace(username)
	if err := validateUsername(username, s.accounts); err != nil {
		return zero, err
	}
	if err := validateDiscriminant(discriminant); err != nil {
		return zero, err
	}
	user, err := s.users.GetByTag(ctx, username, discriminant)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return zero, ErrUserNotFound
		}
		return zero, fmt.Errorf("get user by tag: %w", err)
	}
	return *user, nil
}

// DeleteUser removes the account and evicts its cached view.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Remove(ctx, id); err != nil {
			s.logger.Warn("evict cached user view", zap.String("user_id", id), zap.Error(err))
		}
	}
	if s.events != nil {
		if err := s.events.PublishUserDeleted(ctx, domain.UserDeletedEvent{UserID: id, DeletedAt: s.now().UTC()}); err != nil {
			s.logger.Warn("publish user deleted event", zap.String("user_id", id), zap.Error(err))
		}
	}
	return nil
}

// ChangePassword replaces the stored credential hash.
func (s *UserService) ChangePassword(ctx context.Context, user domain.User, newPassword string) (domain.User, error) {
	var zero domain.User
	if err := validatePassword(newPassword, s.accounts); err != nil {
		return zero, err
	}
	hash, err := s.hasher.Hash(newPassword, s.algo)
	if err != nil {
		return zero, fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, s.algo); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return zero, ErrUserNotFound
		}
		return zero, fmt.Errorf("update password: %w", err)
	}
	user.PasswordHash = hash
	user.PasswordAlgo = s.algo
	if s.events != nil {
		if err := s.events.PublishPasswordChanged(ctx, domain.PasswordChangedEvent{UserID: user.ID, ChangedAt: s.now().UTC()}); err != nil {
			s.logger.Warn("publish password changed event", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	return user, nil
}

// ChangeEmail updates the address and drops the account back to
// AWAIT_VERIFICATION until the new address is confirmed.
func (s *UserService) ChangeEmail(ctx context.Context, user domain.User, email string) (domain.User, error) {
	var zero domain.User
	email = strings.TrimSpace(email)
	if err := validateEmail(email, s.accounts); err != nil {
		return zero, err
	}
	if err := s.users.UpdateEmail(ctx, user.ID, email, domain.VerificationPending); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return zero, ErrUserNotFound
		case errors.Is(err, repository.ErrDuplicateKey):
			return zero, ErrEmailTaken
		}
		return zero, fmt.Errorf("update email: %w", err)
	}
	user.Email = &email
	user.Status = domain.VerificationPending
	return user, nil
}

// ChangeUsername renames the account. The discriminant is re-allocated within
// the new name's space, so the full tag changes.
func (s *UserService) ChangeUsername(ctx context.Context, user domain.User, username string) (domain.User, error) {
	var zero domain.User
	username = strings.TrimSpace(username)
	if err := validateUsername(username, s.accounts); err != nil {
		return zero, err
	}

	for attempt := 0; attempt < allocateAttempts; attempt++ {
		discriminant, err := s.allocateDiscriminant(ctx, username)
		if err != nil {
			return zero, err
		}
		err = s.users.UpdateTag(ctx, user.ID, username, discriminant)
		if err == nil {
			user.Username = username
			user.Discriminant = discriminant
			s.afterWrite(ctx, user)
			return user, nil
		}
		if errors.Is(err, repository.ErrDuplicateKey) {
			continue
		}
		if errors.Is(err, repository.ErrNotFound) {
			return zero, ErrUserNotFound
		}
		return zero, fmt.Errorf("update tag: %w", err)
	}
	return zero, fmt.Errorf("rename user %q: %w", logger.MaskString(username), domain.ErrDiscriminantsExhausted)
}

// SetAvatarURL points the account at a new avatar image.
func (s *UserService) SetAvatarURL(ctx context.Context, user domain.User, avatarURL string) (domain.User, error) {
	var zero domain.User
	avatarURL = strings.TrimSpace(avatarURL)
	if err := validateHTTPURL(avatarURL); err != nil {
		return zero, err
	}
	if err := s.users.UpdateAvatarURL(ctx, user.ID, avatarURL); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return zero, ErrUserNotFound
		}
		return zero, fmt.Errorf("update avatar url: %w", err)
	}
	user.AvatarURL = avatarURL
	s.afterWrite(ctx, user)
	return user, nil
}

// UpdateLoginDate stamps the account with the current time.
func (s *UserService) UpdateLoginDate(ctx context.Context, user domain.User) (domain.User, error) {
	var zero domain.User
	at := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, at); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return zero, ErrUserNotFound
		}
		return zero, fmt.Errorf("update last login: %w", err)
	}
	user.LastLoginDate = &at
	return user, nil
}

// VerifyPassword checks a candidate against the stored hash. A mismatch is a
// false result, not an error; a missing stored hash is an error.
func (s *UserService) VerifyPassword(user domain.User, candidate string) (bool, error) {
	if user.PasswordHash == "" {
		return false, ErrMissingPasswordHash
	}
	ok, err := s.hasher.Verify(candidate, user.PasswordHash, user.PasswordAlgo)
	if err != nil {
		return false, fmt.Errorf("verify password: %w", err)
	}
	return ok, nil
}

func (s *UserService) allocateDiscriminant(ctx context.Context, username string) (string, error) {
	existing, err := s.users.ListDiscriminants(ctx, username)
	if err != nil {
		return "", fmt.Errorf("list discriminants: %w", err)
	}
	taken := make(map[string]struct{}, len(existing))
	for _, d := range existing {
		taken[d] = struct{}{}
	}
	discriminant, err := domain.AllocateDiscriminant(taken)
	if err != nil {
		return "", err
	}
	return discriminant, nil
}

// afterWrite refreshes the shared cache view; failures are logged, never
// surfaced, so a cache outage cannot block an account write.
func (s *UserService) afterWrite(ctx context.Context, user domain.User) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, user.CacheView()); err != nil {
		s.logger.Warn("refresh cached user view", zap.String("user_id", user.ID), zap.Error(err))
	}
}

func (s *UserService) publishRegistered(ctx context.Context, user domain.User) {
	if s.events == nil {
		return
	}
	event := domain.UserRegisteredEvent{
		UserID:       user.ID,
		Username:     user.Username,
		Discriminant: user.Discriminant,
		Email:        user.Email,
		Status:       string(user.Status),
		RegisteredAt: user.CreationDate,
	}
	if err := s.events.PublishUserRegistered(ctx, event); err != nil {
		s.logger.Warn("publish user registered event", zap.String("user_id", user.ID), zap.Error(err))
	}
}
