package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/Discdoor/dd-auth/internal/core/domain"
)

const testMaxAge = 30 * 24 * time.Hour

func newTestSessionService(t *testing.T, repo *fakeSessionRepository, events *fakeEventPublisher) *SessionService {
	t.Helper()
	return NewSessionService(repo, events, testMaxAge, 32, zaptest.NewLogger(t))
}

func TestSessionCreate(t *testing.T) {
	repo := newFakeSessionRepository()
	events := &fakeEventPublisher{}
	svc := newTestSessionService(t, repo, events)
	at := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return at })

	session, err := svc.Create(context.Background(), domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(session.Key) != 64 {
		t.Fatalf("key length = %d, want 64 hex chars", len(session.Key))
	}
	if !session.Expiry.Equal(at.Add(testMaxAge)) {
		t.Fatalf("expiry = %v, want %v", session.Expiry, at.Add(testMaxAge))
	}
	if len(events.sessionCreated) != 1 {
		t.Fatalf("session created events = %d, want 1", len(events.sessionCreated))
	}

	second, err := svc.Create(context.Background(), domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if second.Key == session.Key {
		t.Fatal("keys must be unique per session")
	}
	if len(repo.sessions) != 2 {
		t.Fatalf("live sessions = %d, want 2 (concurrent sessions allowed)", len(repo.sessions))
	}
}

func TestSessionCreatePurgesExpired(t *testing.T) {
	at := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeSessionRepository(
		domain.Session{Key: "dead1", UserID: "u1", Expiry: at.Add(-time.Hour)},
		domain.Session{Key: "dead2", UserID: "u1", Expiry: at.Add(-time.Minute)},
		domain.Session{Key: "live", UserID: "u1", Expiry: at.Add(time.Hour)},
		domain.Session{Key: "other", UserID: "u2", Expiry: at.Add(-time.Hour)},
	)
	events := &fakeEventPublisher{}
	svc := newTestSessionService(t, repo, events)
	svc.WithClock(func() time.Time { return at })

	if _, err := svc.Create(context.Background(), domain.User{ID: "u1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, gone := repo.sessions["dead1"]; gone {
		t.Fatal("expired session dead1 survived purge")
	}
	if _, gone := repo.sessions["dead2"]; gone {
		t.Fatal("expired session dead2 survived purge")
	}
	if _, kept := repo.sessions["live"]; !kept {
		t.Fatal("live session was purged")
	}
	if _, kept := repo.sessions["other"]; !kept {
		t.Fatal("another user's session was purged")
	}
	if events.sessionCreated[0].Purged != 2 {
		t.Fatalf("purged = %d, want 2", events.sessionCreated[0].Purged)
	}
}

func TestSessionGet(t *testing.T) {
	at := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeSessionRepository(
		domain.Session{Key: "live", UserID: "u1", Expiry: at.Add(time.Hour)},
	)
	svc := newTestSessionService(t, repo, &fakeEventPublisher{})
	svc.WithClock(func() time.Time { return at })

	session, err := svc.Get(context.Background(), "live")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if session.UserID != "u1" {
		t.Fatalf("user id = %q", session.UserID)
	}
	// Get must not slide the expiry.
	if stored := repo.sessions["live"]; !stored.Expiry.Equal(at.Add(time.Hour)) {
		t.Fatalf("expiry moved on Get: %v", stored.Expiry)
	}

	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
	if _, err := svc.Get(context.Background(), ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestSessionGetReclaimsExpired(t *testing.T) {
	at := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeSessionRepository(
		domain.Session{Key: "stale", UserID: "u1", Expiry: at.Add(-time.Second)},
	)
	svc := newTestSessionService(t, repo, &fakeEventPublisher{})
	svc.WithClock(func() time.Time { return at })

	if _, err := svc.Get(context.Background(), "stale"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
	if _, still := repo.sessions["stale"]; still {
		t.Fatal("expired session not reclaimed on lookup")
	}
}

func TestSessionValidateSlidesExpiry(t *testing.T) {
	at := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeSessionRepository(
		domain.Session{Key: "live", UserID: "u1", Expiry: at.Add(time.Minute)},
	)
	svc := newTestSessionService(t, repo, &fakeEventPublisher{})
	svc.WithClock(func() time.Time { return at })

	ok, err := svc.Validate(context.Background(), "live")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !ok {
		t.Fatal("live session reported invalid")
	}
	if stored := repo.sessions["live"]; !stored.Expiry.Equal(at.Add(testMaxAge)) {
		t.Fatalf("expiry = %v, want %v", stored.Expiry, at.Add(testMaxAge))
	}
}

func TestSessionValidateExpiredAndMissing(t *testing.T) {
	at := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeSessionRepository(
		domain.Session{Key: "stale", UserID: "u1", Expiry: at},
	)
	svc := newTestSessionService(t, repo, &fakeEventPublisher{})
	svc.WithClock(func() time.Time { return at })

	// Expiry boundary: a session expiring exactly now is no longer alive.
	ok, err := svc.Validate(context.Background(), "stale")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if ok {
		t.Fatal("expired session reported valid")
	}

	ok, err = svc.Validate(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if ok {
		t.Fatal("unknown key reported valid")
	}
}

func TestSessionDelete(t *testing.T) {
	repo := newFakeSessionRepository(
		domain.Session{Key: "live", UserID: "u1", Expiry: time.Now().Add(time.Hour)},
	)
	svc := newTestSessionService(t, repo, &fakeEventPublisher{})

	if err := svc.Delete(context.Background(), "live"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(context.Background(), "live"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}
