package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Discdoor/dd-auth/internal/core/domain"
	"github.com/Discdoor/dd-auth/internal/repository"
)

// SessionRepository implements port.SessionRepository backed by PostgreSQL.
type SessionRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewSessionRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewSessionRepository(exec pgExecutor) *SessionRepository {
	repo := &SessionRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Create persists a new session.
func (r *SessionRepository) Create(ctx context.Context, session domain.Session) error {
	stmt, args, err := r.builder.Insert("auth.sessions").
		Columns("key", "user_id", "created_at", "expiry").
		Values(session.Key, session.UserID, session.CreatedAt, session.Expiry).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert session sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return mapWriteError("insert session", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotAcknowledged
	}

	return nil
}

// GetByKey retrieves a session by its bearer key.
func (r *SessionRepository) GetByKey(ctx context.Context, key string) (*domain.Session, error) {
	stmt, args, err := r.builder.
		Select("key", "user_id", "created_at", "expiry").
		From("auth.sessions").
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select session sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var session domain.Session
	if err := row.Scan(&session.Key, &session.UserID, &session.CreatedAt, &session.Expiry); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	return &session, nil
}

// DeleteByKey removes a session row.
func (r *SessionRepository) DeleteByKey(ctx context.Context, key string) error {
	stmt, args, err := r.builder.Delete("auth.sessions").
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete session sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ExtendExpiry pushes the session expiry forward (sliding expiration).
func (r *SessionRepository) ExtendExpiry(ctx context.Context, key string, expiry time.Time) error {
	stmt, args, err := r.builder.Update("auth.sessions").
		Set("expiry", expiry).
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build extend session sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("extend session: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// DeleteExpiredForUser removes every session of a user whose expiry is at or
// before the supplied instant and returns how many rows were reclaimed.
func (r *SessionRepository) DeleteExpiredForUser(ctx context.Context, userID string, before time.Time) (int64, error) {
	stmt, args, err := r.builder.Delete("auth.sessions").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.LtOrEq{"expiry": before}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build purge sessions sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}

	return ct.RowsAffected(), nil
}
