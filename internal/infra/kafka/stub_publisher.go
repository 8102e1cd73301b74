package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Discdoor/dd-auth/internal/core/domain"
	"github.com/Discdoor/dd-auth/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without brokers.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs auth.user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"username":      event.Username,
		"discrim":       event.Discriminant,
		"status":        event.Status,
		"registered_at": event.RegisteredAt,
	}
	p.logEvent("auth.user.registered", event.UserID, event.RegisteredAt, payload)
	return nil
}

// PublishUserDeleted logs auth.user.deleted events.
func (p *StubPublisher) PublishUserDeleted(_ context.Context, event domain.UserDeletedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"deleted_at": event.DeletedAt,
	}
	p.logEvent("auth.user.deleted", event.UserID, event.DeletedAt, payload)
	return nil
}

// PublishPasswordChanged logs auth.user.password.changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"changed_at": event.ChangedAt,
	}
	p.logEvent("auth.user.password.changed", event.UserID, event.ChangedAt, payload)
	return nil
}

// PublishSessionCreated logs auth.session.created events.
func (p *StubPublisher) PublishSessionCreated(_ context.Context, event domain.SessionCreatedEvent) error {
	payload := map[string]any{
		"user_id":         event.UserID,
		"created_at":      event.CreatedAt,
		"expiry":          event.Expiry,
		"purged_sessions": event.Purged,
	}
	p.logEvent("auth.session.created", event.UserID, event.CreatedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
