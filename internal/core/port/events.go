package port

import (
	"context"

	"github.com/Discdoor/dd-auth/internal/core/domain"
)

// EventPublisher publishes account lifecycle events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishUserDeleted(ctx context.Context, event domain.UserDeletedEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	PublishSessionCreated(ctx context.Context, event domain.SessionCreatedEvent) error
}
