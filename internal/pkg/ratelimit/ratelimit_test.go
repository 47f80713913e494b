package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"userhub-service/internal/pkg/ratelimit"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLimiter(t *testing.T) (*ratelimit.Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return ratelimit.NewLimiter(client), mr
}

func TestAllowLogin(t *testing.T) {
	limiter, _ := testLimiter(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		ok, err := limiter.AllowLogin(ctx, "1.2.3.4", "a@example.com")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d within the window", i+1)
	}

	ok, err := limiter.AllowLogin(ctx, "1.2.3.4", "a@example.com")
	require.NoError(t, err)
	assert.False(t, ok, "eleventh attempt is throttled")

	// A different ip/email pair has its own counter.
	ok, err = limiter.AllowLogin(ctx, "5.6.7.8", "a@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFirstAttemptArmsTheWindow(t *testing.T) {
	limiter, mr := testLimiter(t)
	ctx := context.Background()

	ok, err := limiter.AllowLogin(ctx, "1.2.3.4", "a@example.com")
	require.NoError(t, err)
	require.True(t, ok)

	// Without an expiry the counter would outlive the window and throttle
	// the client forever.
	ttl := mr.TTL("ratelimit:login:1.2.3.4:a@example.com")
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 15*time.Minute)
}

func TestLoginWindowExpires(t *testing.T) {
	limiter, mr := testLimiter(t)
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		limiter.AllowLogin(ctx, "1.2.3.4", "a@example.com")
	}
	ok, err := limiter.AllowLogin(ctx, "1.2.3.4", "a@example.com")
	require.NoError(t, err)
	require.False(t, ok)

	mr.FastForward(16 * time.Minute)

	ok, err = limiter.AllowLogin(ctx, "1.2.3.4", "a@example.com")
	require.NoError(t, err)
	assert.True(t, ok, "counter resets after the window")
}

func TestReset(t *testing.T) {
	limiter, _ := testLimiter(t)
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		limiter.AllowLogin(ctx, "1.2.3.4", "a@example.com")
	}

	require.NoError(t, limiter.Reset(ctx, "1.2.3.4", "a@example.com"))

	ok, err := limiter.AllowLogin(ctx, "1.2.3.4", "a@example.com")
	require.NoError(t, err)
	assert.True(t, ok, "successful login clears the throttle")
}

func TestAllowVerificationResend(t *testing.T) {
	limiter, _ := testLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.AllowVerificationResend(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := limiter.AllowVerificationResend(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAllowRegistration(t *testing.T) {
	limiter, _ := testLimiter(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := limiter.AllowRegistration(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := limiter.AllowRegistration(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)
}
