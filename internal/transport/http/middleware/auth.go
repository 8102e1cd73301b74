package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Discdoor/dd-auth/internal/usecase"
)

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// SessionKeyKey is the context key for the caller's bearer session key.
const SessionKeyKey = "session_key"

// RequireSession validates the Authorization header against the session store
// and stores the resolved user id and session key on the request context.
func RequireSession(sessions *usecase.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid authorization format: expected 'Bearer <key>'"))
			return
		}

		key := strings.TrimSpace(parts[1])
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing session key"))
			return
		}

		session, err := sessions.Get(c.Request.Context(), key)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrSessionNotFound), errors.Is(err, usecase.ErrValidation):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid or expired session"))
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					newErrorResponse(c, "session lookup failed"))
			}
			return
		}

		c.Set(UserIDKey, session.UserID)
		c.Set(SessionKeyKey, session.Key)
		c.Next()
	}
}

// GetUserID returns the authenticated user id stored by RequireSession.
func GetUserID(c *gin.Context) string {
	if id, ok := c.Get(UserIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// GetSessionKey returns the bearer session key stored by RequireSession.
func GetSessionKey(c *gin.Context) string {
	if key, ok := c.Get(SessionKeyKey); ok {
		if s, ok := key.(string); ok {
			return s
		}
	}
	return ""
}
