package port

import (
	"context"
	"time"

	"github.com/Discdoor/dd-auth/internal/core/domain"
)

// UserRepository exposes persistence behavior for users.
//
// Create must be guarded by unique indexes on (username, discriminant) and on
// email so concurrent registrations cannot slip past the registry's checks.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByTag(ctx context.Context, username, discriminant string) (*domain.User, error)
	ListDiscriminants(ctx context.Context, username string) ([]string, error)
	Delete(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash, passwordAlgo string) error
	UpdateEmail(ctx context.Context, id, email string, status domain.VerificationStatus) error
	UpdateTag(ctx context.Context, id, username, discriminant string) error
	UpdateAvatarURL(ctx context.Context, id, avatarURL string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}
