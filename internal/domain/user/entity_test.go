package user_test

import (
	"testing"
	"time"

	"userhub-service/internal/domain/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	u := user.New("Alice@Example.COM", "alice_01", "hashed-secret")

	assert.Equal(t, "alice@example.com", u.Email, "email is canonicalized to lowercase")
	assert.Equal(t, user.RoleAnonymous, u.Role)
	assert.False(t, u.EmailVerified)
	assert.False(t, u.IsLocked)
	assert.Zero(t, u.FailedLoginAttempts)
	assert.True(t, u.VerificationToken.Valid)
	assert.NotEmpty(t, u.VerificationToken.String)
}

func TestGenerateVerificationToken(t *testing.T) {
	a := user.GenerateVerificationToken()
	b := user.GenerateVerificationToken()

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestVerifyEmail(t *testing.T) {
	t.Run("correct token verifies and promotes role", func(t *testing.T) {
		u := user.New("a@example.com", "nick_a", "hash")
		token := u.VerificationToken.String

		require.True(t, u.VerifyEmail(token))
		assert.True(t, u.EmailVerified)
		assert.Equal(t, user.RoleAuthenticated, u.Role)
		assert.False(t, u.VerificationToken.Valid, "token is cleared on use")
	})

	t.Run("token is single use", func(t *testing.T) {
		u := user.New("a@example.com", "nick_a", "hash")
		token := u.VerificationToken.String

		require.True(t, u.VerifyEmail(token))
		assert.False(t, u.VerifyEmail(token))
	})

	t.Run("wrong token is rejected", func(t *testing.T) {
		u := user.New("a@example.com", "nick_a", "hash")

		assert.False(t, u.VerifyEmail("not-the-token"))
		assert.False(t, u.EmailVerified)
		assert.True(t, u.VerificationToken.Valid, "failed attempt leaves the token usable")
	})

	t.Run("empty token is rejected", func(t *testing.T) {
		u := user.New("a@example.com", "nick_a", "hash")
		assert.False(t, u.VerifyEmail(""))
	})

	t.Run("token comparison is case sensitive", func(t *testing.T) {
		u := user.New("a@example.com", "nick_a", "hash")
		upper := u.VerificationToken.String
		// Flip the case of the whole token; base64url tokens are mixed case
		// so this virtually always differs from the original.
		flipped := flipCase(upper)
		if flipped == upper {
			t.Skip("token has no letters to flip")
		}
		assert.False(t, u.VerifyEmail(flipped))
	})

	t.Run("non-default role survives verification", func(t *testing.T) {
		u := user.New("a@example.com", "nick_a", "hash")
		u.Role = user.RoleManager
		token := u.VerificationToken.String

		require.True(t, u.VerifyEmail(token))
		assert.Equal(t, user.RoleManager, u.Role, "only ANONYMOUS is promoted")
	})
}

func TestRecordLoginFailure(t *testing.T) {
	t.Run("locks exactly at the threshold", func(t *testing.T) {
		u := user.New("a@example.com", "nick_a", "hash")

		for i := 1; i < 5; i++ {
			assert.False(t, u.RecordLoginFailure(5), "attempt %d must not lock", i)
			assert.False(t, u.IsLocked)
		}
		assert.True(t, u.RecordLoginFailure(5), "fifth attempt crosses the threshold")
		assert.True(t, u.IsLocked)
		assert.Equal(t, 5, u.FailedLoginAttempts)
	})

	t.Run("threshold of one locks immediately", func(t *testing.T) {
		u := user.New("a@example.com", "nick_a", "hash")
		assert.True(t, u.RecordLoginFailure(1))
		assert.True(t, u.IsLocked)
	})
}

func TestRecordLoginSuccess(t *testing.T) {
	u := user.New("a@example.com", "nick_a", "hash")
	u.FailedLoginAttempts = 3

	now := time.Now()
	u.RecordLoginSuccess(now)

	assert.Zero(t, u.FailedLoginAttempts, "success resets the counter")
	require.True(t, u.LastLoginAt.Valid)
	assert.Equal(t, now, u.LastLoginAt.Time)
}

func TestUnlock(t *testing.T) {
	t.Run("clears lock and counter", func(t *testing.T) {
		u := user.New("a@example.com", "nick_a", "hash")
		u.IsLocked = true
		u.FailedLoginAttempts = 5

		assert.True(t, u.Unlock())
		assert.False(t, u.IsLocked)
		assert.Zero(t, u.FailedLoginAttempts)
	})

	t.Run("no-op when not locked", func(t *testing.T) {
		u := user.New("a@example.com", "nick_a", "hash")
		assert.False(t, u.Unlock())
	})
}

func TestApplyPasswordReset(t *testing.T) {
	u := user.New("a@example.com", "nick_a", "old-hash")
	u.IsLocked = true
	u.FailedLoginAttempts = 5

	u.ApplyPasswordReset("new-hash")

	assert.Equal(t, "new-hash", u.HashedPassword)
	assert.False(t, u.IsLocked, "reset clears the lockout")
	assert.Zero(t, u.FailedLoginAttempts)
}

func flipCase(s string) string {
	out := []rune(s)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z':
			out[i] = r - 'a' + 'A'
		case r >= 'A' && r <= 'Z':
			out[i] = r - 'A' + 'a'
		}
	}
	return string(out)
}
