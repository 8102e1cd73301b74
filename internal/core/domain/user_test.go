package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func sampleUser() User {
	email := "alice@example.com"
	login := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return User{
		ID:            "user-1",
		Username:      "alice",
		Discriminant:  "0042",
		Email:         &email,
		Phone:         "00000000000",
		AvatarURL:     "https://cdn.example.com/avatars/blue.png",
		PasswordHash:  "$2a$10$abcdefghijklmnopqrstuv",
		PasswordAlgo:  "bcrypt",
		Status:        VerificationPending,
		CreationDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		LastLoginDate: &login,
		DateOfBirth:   time.Date(2000, 6, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestSafeViewExcludesPasswordHash(t *testing.T) {
	user := sampleUser()

	view := user.SafeView()

	raw, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal safe view: %v", err)
	}

	if strings.Contains(string(raw), user.PasswordHash) {
		t.Fatal("safe view leaked the password hash")
	}
	if view.Username != "alice" || view.Discriminant != "0042" {
		t.Fatalf("unexpected identity fields: %s#%s", view.Username, view.Discriminant)
	}
	if view.Email == nil || *view.Email != "alice@example.com" {
		t.Fatal("safe view should carry the email")
	}
}

func TestCacheViewOnlyCarriesPublicIdentity(t *testing.T) {
	user := sampleUser()

	view := user.CacheView()

	raw, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal cache view: %v", err)
	}

	for _, forbidden := range []string{"email", "phone", "passwordHash", "verifStatus", "lastLoginDate", "dateOfBirth"} {
		if strings.Contains(string(raw), forbidden) {
			t.Fatalf("cache view leaked field %q: %s", forbidden, raw)
		}
	}

	if view.ID != user.ID || view.Username != user.Username || view.Discriminant != user.Discriminant {
		t.Fatal("cache view lost identity fields")
	}
	if view.AvatarURL != user.AvatarURL {
		t.Fatal("cache view lost avatar URL")
	}
}

func TestTagFormatting(t *testing.T) {
	user := sampleUser()
	if got := user.Tag(); got != "alice#0042" {
		t.Fatalf("unexpected tag %q", got)
	}
}

func TestSessionIsAlive(t *testing.T) {
	now := time.Now().UTC()
	session := Session{Key: "k", UserID: "u", Expiry: now.Add(time.Minute)}

	if !session.IsAlive(now) {
		t.Fatal("session expiring in a minute should be alive")
	}
	if session.IsAlive(now.Add(time.Minute)) {
		t.Fatal("session is not alive at its exact expiry instant")
	}
	if session.IsAlive(now.Add(2 * time.Minute)) {
		t.Fatal("session past expiry should be dead")
	}
}
