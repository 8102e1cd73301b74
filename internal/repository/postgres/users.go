package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Discdoor/dd-auth/internal/core/domain"
	"github.com/Discdoor/dd-auth/internal/repository"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var userColumns = []string{
	"id",
	"bot",
	"username",
	"discriminant",
	"email",
	"phone",
	"avatar_url",
	"password_hash",
	"password_algo",
	"verif_status",
	"creation_date",
	"last_login_date",
	"date_of_birth",
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewUserRepository(exec pgExecutor) *UserRepository {
	repo := &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// mapWriteError translates unique-index violations into repository.ErrDuplicateKey,
// keeping the violated constraint name in the message so callers can tell an
// email conflict from a discriminant race.
func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", repository.ErrDuplicateKey, pgErr.ConstraintName)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Create inserts a new user row. The unique indexes on email and on
// (username, discriminant) are the last line of defense against concurrent
// registration races.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	var emailValue any
	if user.Email != nil && *user.Email != "" {
		emailValue = *user.Email
	}

	query := r.builder.Insert("auth.users").
		Columns(userColumns...).
		Values(
			user.ID,
			user.Bot,
			user.Username,
			user.Discriminant,
			emailValue,
			user.Phone,
			user.AvatarURL,
			user.PasswordHash,
			user.PasswordAlgo,
			user.Status,
			user.CreationDate,
			user.LastLoginDate,
			user.DateOfBirth,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return mapWriteError("insert user", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotAcknowledged
	}

	return nil
}

func (r *UserRepository) getOne(ctx context.Context, pred any, args ...any) (*domain.User, error) {
	stmt, queryArgs, err := r.builder.
		Select(userColumns...).
		From("auth.users").
		Where(pred, args...).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, queryArgs...)

	var (
		email     sql.NullString
		lastLogin *time.Time
		user      domain.User
	)

	if err := row.Scan(
		&user.ID,
		&user.Bot,
		&user.Username,
		&user.Discriminant,
		&email,
		&user.Phone,
		&user.AvatarURL,
		&user.PasswordHash,
		&user.PasswordAlgo,
		&user.Status,
		&user.CreationDate,
		&lastLogin,
		&user.DateOfBirth,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if email.Valid {
		val := email.String
		user.Email = &val
	}
	user.LastLoginDate = lastLogin

	return &user, nil
}

// GetByID retrieves a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

// GetByTag retrieves a user by the (username, discriminant) pair.
func (r *UserRepository) GetByTag(ctx context.Context, username, discriminant string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username, "discriminant": discriminant})
}

// ListDiscriminants returns every discriminant currently assigned to a username.
func (r *UserRepository) ListDiscriminants(ctx context.Context, username string) ([]string, error) {
	stmt, args, err := r.builder.
		Select("discriminant").
		From("auth.users").
		Where(squirrel.Eq{"username": username}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select discriminants sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query discriminants: %w", err)
	}
	defer rows.Close()

	var discriminants []string
	for rows.Next() {
		var discriminant string
		if err := rows.Scan(&discriminant); err != nil {
			return nil, fmt.Errorf("scan discriminant: %w", err)
		}
		discriminants = append(discriminants, discriminant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate discriminants: %w", err)
	}

	return discriminants, nil
}

// Delete removes a user row.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("auth.users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete user sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepository) updateFields(ctx context.Context, id string, set map[string]any) error {
	// SetMap orders columns deterministically.
	stmt, args, err := r.builder.Update("auth.users").
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return mapWriteError("update user", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdatePassword replaces the stored credential hash and its algorithm tag.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash, passwordAlgo string) error {
	return r.updateFields(ctx, id, map[string]any{
		"password_hash": passwordHash,
		"password_algo": passwordAlgo,
	})
}

// UpdateEmail replaces the email and resets the verification status.
func (r *UserRepository) UpdateEmail(ctx context.Context, id, email string, status domain.VerificationStatus) error {
	return r.updateFields(ctx, id, map[string]any{
		"email":        email,
		"verif_status": status,
	})
}

// UpdateTag replaces the (username, discriminant) pair.
func (r *UserRepository) UpdateTag(ctx context.Context, id, username, discriminant string) error {
	return r.updateFields(ctx, id, map[string]any{
		"username":     username,
		"discriminant": discriminant,
	})
}

// UpdateAvatarURL replaces the avatar URL.
func (r *UserRepository) UpdateAvatarURL(ctx context.Context, id, avatarURL string) error {
	return r.updateFields(ctx, id, map[string]any{"avatar_url": avatarURL})
}

// UpdateLastLogin records a successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.updateFields(ctx, id, map[string]any{"last_login_date": at})
}
