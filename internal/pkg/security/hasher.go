// internal/pkg/security/hasher.go
package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMalformedHash is returned when a hash blob is not a bcrypt hash this
// hasher could have produced. Verification fails closed: a foreign blob is an
// error, never a silent mismatch.
var ErrMalformedHash = errors.New("malformed password hash")

// Hasher performs one-way password hashing with a tunable work factor.
// Hashing salts per call, so two hashes of the same password never compare
// equal while both verify.
type Hasher struct {
	cost int
}

// NewHasher builds a Hasher. A cost outside bcrypt's supported range falls
// back to the library default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash produces a salted hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash. A mismatch is (false, nil);
// anything bcrypt cannot parse is ErrMalformedHash.
func (h *Hasher) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}
