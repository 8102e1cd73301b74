package usecase

import (
	"context"
	"time"

	"github.com/Discdoor/dd-auth/internal/core/domain"
	"github.com/Discdoor/dd-auth/internal/repository"
)

type fakeUserRepository struct {
	users map[string]*domain.User

	createErrs []error
	createErr  error
	listErr    error

	createCalls int
}

func newFakeUserRepository(users ...domain.User) *fakeUserRepository {
	repo := &fakeUserRepository{users: make(map[string]*domain.User)}
	for i := range users {
		userCopy := users[i]
		repo.users[userCopy.ID] = &userCopy
	}
	return repo
}

func (f *fakeUserRepository) Create(ctx context.Context, user domain.User) error {
	f.createCalls++
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	} else if f.createErr != nil {
		return f.createErr
	}
	userCopy := user
	f.users[user.ID] = &userCopy
	return nil
}

func (f *fakeUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	userCopy := *user
	return &userCopy, nil
}

func (f *fakeUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email != nil && *user.Email == email {
			userCopy := *user
			return &userCopy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepository) GetByTag(ctx context.Context, username, discriminant string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Username == username && user.Discriminant == discriminant {
			userCopy := *user
			return &userCopy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepository) ListDiscriminants(ctx context.Context, username string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var taken []string
	for _, user := range f.users {
		if user.Username == username {
			taken = append(taken, user.Discriminant)
		}
	}
	return taken, nil
}

func (f *fakeUserRepository) Delete(ctx context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepository) UpdatePassword(ctx context.Context, id, passwordHash, passwordAlgo string) error {
	user, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.PasswordAlgo = passwordAlgo
	return nil
}

func (f *fakeUserRepository) UpdateEmail(ctx context.Context, id, email string, status domain.VerificationStatus) error {
	user, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	for otherID, other := range f.users {
		if otherID != id && other.Email != nil && *other.Email == email {
			return repository.ErrDuplicateKey
		}
	}
	user.Email = &email
	user.Status = status
	return nil
}

func (f *fakeUserRepository) UpdateTag(ctx context.Context, id, username, discriminant string) error {
	user, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	for otherID, other := range f.users {
		if otherID != id && other.Username == username && other.Discriminant == discriminant {
			return repository.ErrDuplicateKey
		}
	}
	user.Username = username
	user.Discriminant = discriminant
	return nil
}

func (f *fakeUserRepository) UpdateAvatarURL(ctx context.Context, id, avatarURL string) error {
	user, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.AvatarURL = avatarURL
	return nil
}

func (f *fakeUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	user, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.LastLoginDate = &at
	return nil
}

type fakeUserCache struct {
	views      map[string]domain.CacheView
	putErr     error
	putCalls   int
	removeKeys []string
}

func newFakeUserCache() *fakeUserCache {
	return &fakeUserCache{views: make(map[string]domain.CacheView)}
}

func (f *fakeUserCache) Put(ctx context.Context, view domain.CacheView) error {
	f.putCalls++
	if f.putErr != nil {
		return f.putErr
	}
	f.views[view.ID] = view
	return nil
}

func (f *fakeUserCache) Get(ctx context.Context, userID string) (*domain.CacheView, error) {
	view, ok := f.views[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &view, nil
}

func (f *fakeUserCache) Remove(ctx context.Context, userID string) error {
	f.removeKeys = append(f.removeKeys, userID)
	delete(f.views, userID)
	return nil
}

type fakeEventPublisher struct {
	registered      []domain.UserRegisteredEvent
	deleted         []domain.UserDeletedEvent
	passwordChanged []domain.PasswordChangedEvent
	sessionCreated  []domain.SessionCreatedEvent
	err             error
}

func (f *fakeEventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	f.registered = append(f.registered, event)
	return f.err
}

func (f *fakeEventPublisher) PublishUserDeleted(ctx context.Context, event domain.UserDeletedEvent) error {
	f.deleted = append(f.deleted, event)
	return f.err
}

func (f *fakeEventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	f.passwordChanged = append(f.passwordChanged, event)
	return f.err
}

func (f *fakeEventPublisher) PublishSessionCreated(ctx context.Context, event domain.SessionCreatedEvent) error {
	f.sessionCreated = append(f.sessionCreated, event)
	return f.err
}

type fakeSessionRepository struct {
	sessions map[string]*domain.Session

	createErr error
	getErr    error
}

func newFakeSessionRepository(sessions ...domain.Session) *fakeSessionRepository {
	repo := &fakeSessionRepository{sessions: make(map[string]*domain.Session)}
	for i := range sessions {
		sessionCopy := sessions[i]
		repo.sessions[sessionCopy.Key] = &sessionCopy
	}
	return repo
}

func (f *fakeSessionRepository) Create(ctx context.Context, session domain.Session) error {
	if f.createErr != nil {
		return f.createErr
	}
	sessionCopy := session
	f.sessions[session.Key] = &sessionCopy
	return nil
}

func (f *fakeSessionRepository) GetByKey(ctx context.Context, key string) (*domain.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	session, ok := f.sessions[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	sessionCopy := *session
	return &sessionCopy, nil
}

func (f *fakeSessionRepository) DeleteByKey(ctx context.Context, key string) error {
	if _, ok := f.sessions[key]; !ok {
		return repository.ErrNotFound
	}
	delete(f.sessions, key)
	return nil
}

func (f *fakeSessionRepository) ExtendExpiry(ctx context.Context, key string, expiry time.Time) error {
	session, ok := f.sessions[key]
	if !ok {
		return repository.ErrNotFound
	}
	session.Expiry = expiry
	return nil
}

func (f *fakeSessionRepository) DeleteExpiredForUser(ctx context.Context, userID string, before time.Time) (int64, error) {
	var purged int64
	for key, session := range f.sessions {
		if session.UserID == userID && !session.Expiry.After(before) {
			delete(f.sessions, key)
			purged++
		}
	}
	return purged, nil
}
