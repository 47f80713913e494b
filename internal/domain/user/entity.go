// internal/domain/user/entity.go
package user

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the central account entity. Verification and lock status are
// orthogonal: an account can be verified-and-locked or unverified-and-locked.
type User struct {
	ID                  uuid.UUID      `json:"id" db:"id"`
	Nickname            string         `json:"nickname" db:"nickname"`
	Email               string         `json:"email" db:"email"`
	HashedPassword      string         `json:"-" db:"hashed_password"`
	Role                Role           `json:"role" db:"role"`
	EmailVerified       bool           `json:"email_verified" db:"email_verified"`
	VerificationToken   sql.NullString `json:"-" db:"verification_token"`
	IsLocked            bool           `json:"is_locked" db:"is_locked"`
	FailedLoginAttempts int            `json:"-" db:"failed_login_attempts"`
	FirstName           sql.NullString `json:"first_name" db:"first_name"`
	LastName            sql.NullString `json:"last_name" db:"last_name"`
	Bio                 sql.NullString `json:"bio" db:"bio"`
	ProfilePictureURL   sql.NullString `json:"profile_picture_url" db:"profile_picture_url"`
	LastLoginAt         sql.NullTime   `json:"last_login_at" db:"last_login_at"`
	CreatedAt           time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at" db:"updated_at"`
}

// New builds an account in its initial state: unverified, unlocked, role
// ANONYMOUS, with a fresh one-time verification token.
func New(email, nickname, hashedPassword string) *User {
	return &User{
		ID:                uuid.New(),
		Email:             strings.ToLower(email),
		Nickname:          nickname,
		HashedPassword:    hashedPassword,
		Role:              RoleAnonymous,
		VerificationToken: sql.NullString{String: GenerateVerificationToken(), Valid: true},
	}
}

// GenerateVerificationToken returns a URL-safe one-time secret.
func GenerateVerificationToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

// ========== State transitions ==========
//
// Every transition is a total function: an event that is not valid for the
// current state is a no-op that returns false. Callers persist the mutated
// entity in a single update.

// VerifyEmail consumes the one-time verification token. The presented token
// must exactly match the stored one (case-sensitive). On success the token is
// cleared irreversibly and the default role is promoted to AUTHENTICATED, so
// a second call with the same token fails.
func (u *User) VerifyEmail(token string) bool {
	if !u.VerificationToken.Valid || token == "" || u.VerificationToken.String != token {
		return false
	}
	u.EmailVerified = true
	u.VerificationToken = sql.NullString{}
	if u.Role == RoleAnonymous {
		u.Role = RoleAuthenticated
	}
	return true
}

// RecordLoginFailure increments the failed-attempt counter and reports
// whether the account crossed the lockout threshold on this attempt.
func (u *User) RecordLoginFailure(threshold int) bool {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= threshold {
		u.IsLocked = true
		return true
	}
	return false
}

// RecordLoginSuccess resets the failure counter and stamps the login time.
// Only reachable from a verified, unlocked state; the orchestrator checks
// both before verifying the password.
func (u *User) RecordLoginSuccess(now time.Time) {
	u.FailedLoginAttempts = 0
	u.LastLoginAt = sql.NullTime{Time: now, Valid: true}
}

// Unlock clears the lock and the failure counter. No-op when not locked.
func (u *User) Unlock() bool {
	if !u.IsLocked {
		return false
	}
	u.IsLocked = false
	u.FailedLoginAttempts = 0
	return true
}

// ApplyPasswordReset replaces the password hash and clears any lockout.
func (u *User) ApplyPasswordReset(newHash string) {
	u.HashedPassword = newHash
	u.IsLocked = false
	u.FailedLoginAttempts = 0
}
