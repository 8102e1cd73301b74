package port

import (
	"context"
	"time"

	"github.com/Discdoor/dd-auth/internal/core/domain"
)

// SessionRepository deals with bearer-session storage.
type SessionRepository interface {
	Create(ctx context.Context, session domain.Session) error
	GetByKey(ctx context.Context, key string) (*domain.Session, error)
	DeleteByKey(ctx context.Context, key string) error
	ExtendExpiry(ctx context.Context, key string, expiry time.Time) error
	DeleteExpiredForUser(ctx context.Context, userID string, before time.Time) (int64, error)
}
