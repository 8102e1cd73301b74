package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Discdoor/dd-auth/internal/core/domain"
	"github.com/Discdoor/dd-auth/internal/core/port"
	"github.com/Discdoor/dd-auth/internal/transport/http/middleware"
	"github.com/Discdoor/dd-auth/internal/usecase"
)

// UserHandler exposes the authenticated profile surface and the public
// cache-view lookup used by sibling services.
type UserHandler struct {
	users    *usecase.UserService
	sessions *usecase.SessionService
	cache    port.UserCache
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(users *usecase.UserService, sessions *usecase.SessionService, cache port.UserCache) *UserHandler {
	return &UserHandler{users: users, sessions: sessions, cache: cache}
}

// RegisterRoutes binds user routes. Everything under /me requires a session.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/:id", h.getCacheView)

	me := r.Group("/me")
	me.Use(middleware.RequireSession(h.sessions))
	me.GET("", h.getSelf)
	me.DELETE("", h.deleteSelf)
	me.POST("/password", h.changePassword)
	me.POST("/email", h.changeEmail)
	me.POST("/username", h.changeUsername)
	me.POST("/avatar", h.changeAvatar)
}

// getCacheView serves the public projection. A Redis hit avoids the database;
// on miss the row is fetched and the projection backfilled so the next caller
// hits the cache.
func (h *UserHandler) getCacheView(c *gin.Context) {
	id := c.Param("id")

	if h.cache != nil {
		if view, err := h.cache.Get(c.Request.Context(), id); err == nil {
			c.JSON(http.StatusOK, view)
			return
		}
	}

	user, err := h.users.GetUserByID(c.Request.Context(), id)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "invalid user id"},
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "user lookup failed")
		return
	}

	view := user.CacheView()
	if h.cache != nil {
		// Best effort; a cache outage must not fail the read.
		_ = h.cache.Put(c.Request.Context(), view)
	}
	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) getSelf(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user.SafeView())
}

func (h *UserHandler) deleteSelf(c *gin.Context) {
	if err := h.users.DeleteUser(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "account deletion failed")
		return
	}
	// The caller's own session dies with the account.
	if key := middleware.GetSessionKey(c); key != "" {
		_ = h.sessions.Delete(c.Request.Context(), key)
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "account deleted"})
}

func (h *UserHandler) changePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid password change payload"))
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	valid, err := h.users.VerifyPassword(user, req.CurrentPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "password verification failed"))
		return
	}
	if !valid {
		c.JSON(http.StatusForbidden, NewErrorResponse(c, "current password is incorrect"))
		return
	}

	if _, err := h.users.ChangePassword(c.Request.Context(), user, req.NewPassword); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: err.Error()},
		}, http.StatusInternalServerError, "password change failed")
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "password changed"})
}

func (h *UserHandler) changeEmail(c *gin.Context) {
	var req ChangeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid email change payload"))
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	updated, err := h.users.ChangeEmail(c.Request.Context(), user, req.Email)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: err.Error()},
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already in use"},
		}, http.StatusInternalServerError, "email change failed")
		return
	}
	c.JSON(http.StatusOK, updated.SafeView())
}

func (h *UserHandler) changeUsername(c *gin.Context) {
	var req ChangeUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid username change payload"))
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	updated, err := h.users.ChangeUsername(c.Request.Context(), user, req.Username)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: err.Error()},
			{Err: domain.ErrDiscriminantsExhausted, Status: http.StatusConflict, Message: "username is fully allocated"},
		}, http.StatusInternalServerError, "username change failed")
		return
	}
	c.JSON(http.StatusOK, updated.SafeView())
}

func (h *UserHandler) changeAvatar(c *gin.Context) {
	var req ChangeAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid avatar payload"))
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	updated, err := h.users.SetAvatarURL(c.Request.Context(), user, req.AvatarURL)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: err.Error()},
		}, http.StatusInternalServerError, "avatar change failed")
		return
	}
	c.JSON(http.StatusOK, updated.SafeView())
}

func (h *UserHandler) currentUser(c *gin.Context) (domain.User, bool) {
	user, err := h.users.GetUserByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, NewErrorResponse(c, "user not found"))
		} else {
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "user lookup failed"))
		}
		return domain.User{}, false
	}
	return user, true
}
