package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Discdoor/dd-auth/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterRequest defines the payload for account creation.
type RegisterRequest struct {
	Email       string    `json:"email"`
	Username    string    `json:"username" binding:"required"`
	Password    string    `json:"password" binding:"required"`
	DateOfBirth time.Time `json:"dateOfBirth" binding:"required"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SessionSummary is the session context returned on register and login.
type SessionSummary struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"createdAt"`
	Expiry    time.Time `json:"expiry"`
}

// PasswordHint carries advisory strength feedback for a newly set password.
// It never blocks anything; the account is already created when it is sent.
type PasswordHint struct {
	Score   int    `json:"score"`
	Weak    bool   `json:"weak"`
	Message string `json:"message,omitempty"`
}

// AuthResponse is returned for a successful register or login.
type AuthResponse struct {
	User         domain.SafeView `json:"user"`
	Session      SessionSummary  `json:"session"`
	PasswordHint *PasswordHint   `json:"passwordHint,omitempty"`
}

// SessionValidationResponse reports whether a bearer key maps to a live session.
type SessionValidationResponse struct {
	Valid bool `json:"valid"`
}

// ChangePasswordRequest defines the payload for a self-service password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// ChangeEmailRequest defines the payload for changing the account email.
type ChangeEmailRequest struct {
	Email string `json:"email" binding:"required"`
}

// ChangeUsernameRequest defines the payload for renaming the account.
type ChangeUsernameRequest struct {
	Username string `json:"username" binding:"required"`
}

// ChangeAvatarRequest defines the payload for pointing the account at a new avatar.
type ChangeAvatarRequest struct {
	AvatarURL string `json:"avatarUrl" binding:"required"`
}

// HealthResponse reports liveness and per-dependency readiness.
type HealthResponse struct {
	Status    string            `json:"status"`
	StartedAt time.Time         `json:"started_at"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// bearerKey extracts the session key from the Authorization header, or "".
func bearerKey(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func sessionSummary(session domain.Session) SessionSummary {
	return SessionSummary{
		Key:       session.Key,
		CreatedAt: session.CreatedAt,
		Expiry:    session.Expiry,
	}
}
