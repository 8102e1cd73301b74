package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/Discdoor/dd-auth/internal/core/domain"
	"github.com/Discdoor/dd-auth/internal/repository"
)

func newUserMock(t *testing.T) (pgxmock.PgxPoolIface, *UserRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewUserRepository(mock)
}

func testUser() domain.User {
	email := "alice@example.com"
	return domain.User{
		ID:           "user-123",
		Username:     "alice",
		Discriminant: "0042",
		Email:        &email,
		Phone:        "00000000000",
		AvatarURL:    "https://cdn.example.com/a.png",
		PasswordHash: "$2a$10$hash",
		PasswordAlgo: "bcrypt",
		Status:       domain.VerificationPending,
		CreationDate: time.Now().UTC(),
		DateOfBirth:  time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestUserRepository_Create(t *testing.T) {
	mock, repo := newUserMock(t)
	user := testUser()

	mock.ExpectExec(`INSERT INTO auth\.users`).
		WithArgs(
			user.ID,
			user.Bot,
			user.Username,
			user.Discriminant,
			*user.Email,
			user.Phone,
			user.AvatarURL,
			user.PasswordHash,
			user.PasswordAlgo,
			user.Status,
			user.CreationDate,
			(*time.Time)(nil),
			user.DateOfBirth,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_CreateDuplicateDiscriminant(t *testing.T) {
	mock, repo := newUserMock(t)
	user := testUser()

	mock.ExpectExec(`INSERT INTO auth\.users`).
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(),
		).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_discriminant_key"})

	err := repo.Create(context.Background(), user)
	if !errors.Is(err, repository.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	mock, repo := newUserMock(t)

	mock.ExpectQuery(`SELECT .+ FROM auth\.users`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(userColumns))

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock, repo := newUserMock(t)
	user := testUser()

	rows := pgxmock.NewRows(userColumns).AddRow(
		user.ID,
		user.Bot,
		user.Username,
		user.Discriminant,
		*user.Email,
		user.Phone,
		user.AvatarURL,
		user.PasswordHash,
		user.PasswordAlgo,
		user.Status,
		user.CreationDate,
		nil,
		user.DateOfBirth,
	)

	mock.ExpectQuery(`SELECT .+ FROM auth\.users`).
		WithArgs(*user.Email).
		WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), *user.Email)
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("unexpected user id %q", got.ID)
	}
	if got.Email == nil || *got.Email != *user.Email {
		t.Fatal("email was not scanned")
	}
	if got.LastLoginDate != nil {
		t.Fatal("last login should be nil for a fresh account")
	}
}

func TestUserRepository_ListDiscriminants(t *testing.T) {
	mock, repo := newUserMock(t)

	rows := pgxmock.NewRows([]string{"discriminant"}).
		AddRow("0001").
		AddRow("0042")

	mock.ExpectQuery(`SELECT discriminant FROM auth\.users`).
		WithArgs("alice").
		WillReturnRows(rows)

	discriminants, err := repo.ListDiscriminants(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListDiscriminants returned error: %v", err)
	}
	if len(discriminants) != 2 || discriminants[1] != "0042" {
		t.Fatalf("unexpected discriminants %v", discriminants)
	}
}

func TestUserRepository_DeleteNotFound(t *testing.T) {
	mock, repo := newUserMock(t)

	mock.ExpectExec(`DELETE FROM auth\.users`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	mock, repo := newUserMock(t)

	// SetMap orders columns alphabetically: password_algo, password_hash.
	mock.ExpectExec(`UPDATE auth\.users SET`).
		WithArgs("bcrypt", "$2a$10$newhash", "user-123").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdatePassword(context.Background(), "user-123", "$2a$10$newhash", "bcrypt"); err != nil {
		t.Fatalf("UpdatePassword returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
