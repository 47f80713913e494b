// internal/repository/postgres/user_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"userhub-service/internal/domain/user"
	xerrors "userhub-service/internal/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, nickname, email, hashed_password, role, email_verified,
	verification_token, is_locked, failed_login_attempts,
	first_name, last_name, bio, profile_picture_url,
	last_login_at, created_at, updated_at
`

func (r *UserRepository) scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	var role string
	err := row.Scan(
		&u.ID, &u.Nickname, &u.Email, &u.HashedPassword, &role, &u.EmailVerified,
		&u.VerificationToken, &u.IsLocked, &u.FailedLoginAttempts,
		&u.FirstName, &u.LastName, &u.Bio, &u.ProfilePictureURL,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	parsed, err := user.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("stored role is invalid for user %s: %w", u.ID, err)
	}
	u.Role = parsed
	return &u, nil
}

// FindByEmail looks an account up case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) FindByNickname(ctx context.Context, nickname string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE nickname = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, nickname))
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

// Create inserts a new account. Unique violations on email or nickname map
// to the matching conflict kind so the service can report which field
// collided.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (
			id, nickname, email, hashed_password, role, email_verified,
			verification_token, is_locked, failed_login_attempts,
			first_name, last_name, bio, profile_picture_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		u.ID, u.Nickname, strings.ToLower(u.Email), u.HashedPassword, u.Role.String(), u.EmailVerified,
		u.VerificationToken, u.IsLocked, u.FailedLoginAttempts,
		u.FirstName, u.LastName, u.Bio, u.ProfilePictureURL,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

// Update persists every mutable field in one statement, so each lifecycle
// use case commits exactly once.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users SET
			nickname = $2, email = $3, hashed_password = $4, role = $5,
			email_verified = $6, verification_token = $7, is_locked = $8,
			failed_login_attempts = $9, first_name = $10, last_name = $11,
			bio = $12, profile_picture_url = $13, last_login_at = $14,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		u.ID, u.Nickname, strings.ToLower(u.Email), u.HashedPassword, u.Role.String(),
		u.EmailVerified, u.VerificationToken, u.IsLocked,
		u.FailedLoginAttempts, u.FirstName, u.LastName,
		u.Bio, u.ProfilePictureURL, u.LastLoginAt,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// RecordLoginFailure counts a failed attempt and applies the lock transition
// in a single UPDATE. Concurrent failures against the same account each
// increment the counter and the threshold comparison happens inside the
// statement, so the transition to locked cannot be skipped by a race.
func (r *UserRepository) RecordLoginFailure(ctx context.Context, id uuid.UUID, threshold int) (int, bool, error) {
	query := `
		UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1,
		    is_locked = is_locked OR (failed_login_attempts + 1 >= $2),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING failed_login_attempts, is_locked
	`

	var attempts int
	var locked bool
	err := r.db.QueryRow(ctx, query, id, threshold).Scan(&attempts, &locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, xerrors.ErrNotFound
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to record login failure: %w", err)
	}
	return attempts, locked, nil
}

// RecordLoginSuccess resets the failure counter and stamps last_login_at.
func (r *UserRepository) RecordLoginSuccess(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET failed_login_attempts = 0, last_login_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to record login success: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// List returns a page of accounts, optionally filtered by role, ordered by
// creation time.
func (r *UserRepository) List(ctx context.Context, offset, limit int, role *user.Role) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	args := []interface{}{}
	if role != nil {
		query += ` WHERE role = $1`
		args = append(args, role.String())
	}
	query += fmt.Sprintf(` ORDER BY created_at OFFSET $%d LIMIT $%d`, len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Count(ctx context.Context, role *user.Role) (int, error) {
	query := `SELECT COUNT(*) FROM users`
	args := []interface{}{}
	if role != nil {
		query += ` WHERE role = $1`
		args = append(args, role.String())
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// mapUniqueViolation translates a 23505 on the email or nickname unique
// indexes into the matching conflict kind.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch {
		case strings.Contains(pgErr.ConstraintName, "email"):
			return xerrors.ErrEmailExists
		case strings.Contains(pgErr.ConstraintName, "nickname"):
			return xerrors.ErrNicknameExists
		}
	}
	return fmt.Errorf("database error: %w", err)
}
