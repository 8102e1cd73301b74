package domain

import "time"

// UserRegisteredEvent represents the payload for auth.user.registered messages.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Username     string
	Discriminant string
	Email        *string
	Status       string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// UserDeletedEvent represents the payload for auth.user.deleted messages.
type UserDeletedEvent struct {
	EventID   string
	UserID    string
	DeletedAt time.Time
	Metadata  map[string]any
}

// PasswordChangedEvent represents the payload for auth.user.password.changed messages.
type PasswordChangedEvent struct {
	EventID   string
	UserID    string
	ChangedAt time.Time
	Metadata  map[string]any
}

// SessionCreatedEvent represents the payload for auth.session.created messages.
type SessionCreatedEvent struct {
	EventID   string
	UserID    string
	CreatedAt time.Time
	Expiry    time.Time
	Purged    int
	Metadata  map[string]any
}
