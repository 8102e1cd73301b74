package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Discdoor/dd-auth/internal/core/domain"
	"github.com/Discdoor/dd-auth/internal/transport/http/middleware"
	"github.com/Discdoor/dd-auth/internal/usecase"
)

// AuthHandler exposes registration, login, logout and session validation.
type AuthHandler struct {
	auth     *usecase.AuthService
	sessions *usecase.SessionService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, sessions *usecase.SessionService) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions}
}

// RegisterRoutes binds authentication routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.register)
	r.POST("/login", h.login)
	r.POST("/logout", middleware.RequireSession(h.sessions), h.logout)
	r.GET("/session", h.validateSession)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	result, err := h.auth.Register(c.Request.Context(), usecase.CreateUserInput{
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: err.Error()},
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already in use"},
			{Err: domain.ErrDiscriminantsExhausted, Status: http.StatusConflict, Message: "username is fully allocated"},
		}, http.StatusInternalServerError, "registration failed")
		return
	}

	hint := &PasswordHint{Score: result.PasswordScore, Weak: result.PasswordWeak}
	if result.PasswordWeak {
		hint.Message = "this password is easy to guess; a longer passphrase would be safer"
	}

	c.JSON(http.StatusCreated, AuthResponse{
		User:         result.User.SafeView(),
		Session:      sessionSummary(result.Session),
		PasswordHint: hint,
	})
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	user, session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid email or password"},
		}, http.StatusInternalServerError, "login failed")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		User:    user.SafeView(),
		Session: sessionSummary(session),
	})
}

func (h *AuthHandler) logout(c *gin.Context) {
	key := middleware.GetSessionKey(c)
	if err := h.auth.Logout(c.Request.Context(), key); err != nil {
		if errors.Is(err, usecase.ErrSessionNotFound) {
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid or expired session"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "logout failed"))
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}

// validateSession reports validity for the presented bearer key and slides its
// expiry forward when it is live. Invalid keys produce a 200 with valid=false
// so gateway callers can branch without error handling.
func (h *AuthHandler) validateSession(c *gin.Context) {
	key := bearerKey(c)
	if key == "" {
		c.JSON(http.StatusOK, SessionValidationResponse{Valid: false})
		return
	}

	valid, err := h.sessions.Validate(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "session validation failed"))
		return
	}
	c.JSON(http.StatusOK, SessionValidationResponse{Valid: valid})
}
