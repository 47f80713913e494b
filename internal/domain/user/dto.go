// internal/domain/user/dto.go
package user

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RegisterRequest carries a self-service registration.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Nickname  string `json:"nickname"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// CreateRequest is the admin variant: the account is created pre-verified
// with an explicit role.
type CreateRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Nickname  string `json:"nickname"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateRequest updates account fields; nil pointers are left untouched.
type UpdateRequest struct {
	Email             *string `json:"email"`
	Nickname          *string `json:"nickname"`
	Password          *string `json:"password"`
	Role              *string `json:"role"`
	FirstName         *string `json:"first_name"`
	LastName          *string `json:"last_name"`
	Bio               *string `json:"bio"`
	ProfilePictureURL *string `json:"profile_picture_url"`
}

// Empty reports whether the update carries no fields at all.
func (r *UpdateRequest) Empty() bool {
	return r.Email == nil && r.Nickname == nil && r.Password == nil &&
		r.Role == nil && r.FirstName == nil && r.LastName == nil &&
		r.Bio == nil && r.ProfilePictureURL == nil
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned on successful authentication.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *Response `json:"user"`
}

// Response is the public view of an account. The password hash and the
// verification token never leave the service.
type Response struct {
	ID                uuid.UUID  `json:"id"`
	Email             string     `json:"email"`
	Nickname          string     `json:"nickname"`
	Role              Role       `json:"role"`
	EmailVerified     bool       `json:"email_verified"`
	IsLocked          bool       `json:"is_locked"`
	FirstName         string     `json:"first_name,omitempty"`
	LastName          string     `json:"last_name,omitempty"`
	Bio               string     `json:"bio,omitempty"`
	ProfilePictureURL string     `json:"profile_picture_url,omitempty"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ListResponse wraps a page of accounts.
type ListResponse struct {
	Items []*Response `json:"items"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
}

// ToResponse converts the entity to its public view.
func (u *User) ToResponse() *Response {
	resp := &Response{
		ID:                u.ID,
		Email:             u.Email,
		Nickname:          u.Nickname,
		Role:              u.Role,
		EmailVerified:     u.EmailVerified,
		IsLocked:          u.IsLocked,
		FirstName:         u.FirstName.String,
		LastName:          u.LastName.String,
		Bio:               u.Bio.String,
		ProfilePictureURL: u.ProfilePictureURL.String,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
	if u.LastLoginAt.Valid {
		t := u.LastLoginAt.Time
		resp.LastLoginAt = &t
	}
	return resp
}

// ========== Input validation ==========

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks the email format. Uniqueness is the repository's job.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

const passwordSpecials = "@$!%*?&"

// ValidatePassword enforces the complexity policy: at least 8 characters
// with an uppercase letter, a lowercase letter, a digit, and a special
// character from the fixed set. Enforced by the orchestrator, not the hasher.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		default:
			return fmt.Errorf("password contains an unsupported character")
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return fmt.Errorf("password must include an uppercase letter, a lowercase letter, a number, and a special character")
	}
	return nil
}
