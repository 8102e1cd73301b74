package port

import (
	"context"

	"github.com/Discdoor/dd-auth/internal/core/domain"
)

// UserCache stores the public identity projection for consumption by sibling
// services. Writes are best-effort; the registry logs failures instead of
// failing the owning operation.
type UserCache interface {
	Put(ctx context.Context, view domain.CacheView) error
	Get(ctx context.Context, userID string) (*domain.CacheView, error)
	Remove(ctx context.Context, userID string) error
}
