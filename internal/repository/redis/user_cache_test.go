package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/Discdoor/dd-auth/internal/core/domain"
	"github.com/Discdoor/dd-auth/internal/repository"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestUserCacheRepository_PutAndGet(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewUserCacheRepository(client, "cache", time.Hour)

	ctx := context.Background()
	view := domain.CacheView{
		ID:           "user-123",
		Username:     "alice",
		Discriminant: "0042",
		AvatarURL:    "https://cdn.example.com/a.png",
	}

	if err := repo.Put(ctx, view); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	got, err := repo.Get(ctx, "user-123")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Username != "alice" || got.Discriminant != "0042" {
		t.Fatalf("unexpected cached view %+v", got)
	}

	remaining := server.TTL("cache:user-123")
	if remaining <= 0 || remaining > time.Hour {
		t.Fatalf("expected ttl within (0, 1h], got %v", remaining)
	}
}

func TestUserCacheRepository_GetMiss(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewUserCacheRepository(client, "cache", time.Hour)

	if _, err := repo.Get(context.Background(), "absent"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserCacheRepository_Remove(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewUserCacheRepository(client, "cache", time.Hour)

	ctx := context.Background()
	view := domain.CacheView{ID: "user-123", Username: "alice", Discriminant: "0001"}

	if err := repo.Put(ctx, view); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if err := repo.Remove(ctx, "user-123"); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if _, err := repo.Get(ctx, "user-123"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after removal, got %v", err)
	}
}

func TestUserCacheRepository_EmptyID(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewUserCacheRepository(client, "cache", time.Hour)

	if err := repo.Put(context.Background(), domain.CacheView{}); err == nil {
		t.Fatal("expected error for empty user id")
	}
}
