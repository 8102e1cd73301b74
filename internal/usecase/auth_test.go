package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"
)

func newTestAuthService(t *testing.T, users *fakeUserRepository, sessions *fakeSessionRepository) *AuthService {
	t.Helper()
	userSvc := newTestUserService(t, users, newFakeUserCache(), &fakeEventPublisher{})
	sessionSvc := newTestSessionService(t, sessions, &fakeEventPublisher{})
	return NewAuthService(userSvc, sessionSvc, zaptest.NewLogger(t))
}

func TestRegisterOpensSession(t *testing.T) {
	users := newFakeUserRepository()
	sessions := newFakeSessionRepository()
	svc := newTestAuthService(t, users, sessions)

	result, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if result.Session.UserID != result.User.ID {
		t.Fatalf("session bound to %q, want %q", result.Session.UserID, result.User.ID)
	}
	if _, stored := sessions.sessions[result.Session.Key]; !stored {
		t.Fatal("session not persisted")
	}
}

func TestRegisterPasswordHint(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepository(), newFakeSessionRepository())

	weak := validInput()
	weak.Password = "aaaa"
	result, err := svc.Register(context.Background(), weak)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !result.PasswordWeak {
		t.Fatalf("score %d for %q not flagged weak", result.PasswordScore, weak.Password)
	}

	strong := validInput()
	strong.Email = "bob@example.com"
	strong.Username = "bob"
	strong.Password = "J8#kz!Qw39@LmPv2"
	result, err = svc.Register(context.Background(), strong)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if result.PasswordWeak {
		t.Fatalf("score %d for a random password flagged weak", result.PasswordScore)
	}
}

func TestLogin(t *testing.T) {
	users := newFakeUserRepository()
	sessions := newFakeSessionRepository()
	svc := newTestAuthService(t, users, sessions)

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, session, err := svc.Login(context.Background(), "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.UserID != user.ID {
		t.Fatalf("session bound to %q, want %q", session.UserID, user.ID)
	}
	if user.LastLoginDate == nil {
		t.Fatal("login date not stamped")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	users := newFakeUserRepository()
	sessions := newFakeSessionRepository()
	svc := newTestAuthService(t, users, sessions)

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Wrong password and unknown address produce the same error.
	if _, _, err := svc.Login(context.Background(), "alice@example.com", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown address: err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(context.Background(), "not-an-email", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("malformed address: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogout(t *testing.T) {
	users := newFakeUserRepository()
	sessions := newFakeSessionRepository()
	svc := newTestAuthService(t, users, sessions)

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, session, err := svc.Login(context.Background(), "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.Logout(context.Background(), session.Key); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := svc.Logout(context.Background(), session.Key); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}
