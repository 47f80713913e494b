// internal/pkg/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter throttles the public authentication endpoints per client. It is a
// transport-level guard against bulk abuse; the per-account lockout counter
// in the user service is the security mechanism and lives in the database.
type Limiter struct {
	client *redis.Client
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

// AllowLogin permits up to 10 login attempts per ip/email pair per 15 minutes.
func (l *Limiter) AllowLogin(ctx context.Context, ip, email string) (bool, error) {
	return l.allow(ctx, fmt.Sprintf("ratelimit:login:%s:%s", ip, email), 10, 15*time.Minute)
}

// AllowVerificationResend permits 3 resends per email per hour.
func (l *Limiter) AllowVerificationResend(ctx context.Context, email string) (bool, error) {
	return l.allow(ctx, fmt.Sprintf("ratelimit:verify_resend:%s", email), 3, time.Hour)
}

// AllowRegistration permits 5 registrations per ip per hour.
func (l *Limiter) AllowRegistration(ctx context.Context, ip string) (bool, error) {
	return l.allow(ctx, fmt.Sprintf("ratelimit:register:%s", ip), 5, time.Hour)
}

// Reset clears the login counter for an ip/email pair after a successful
// authentication.
func (l *Limiter) Reset(ctx context.Context, ip, email string) error {
	return l.client.Del(ctx, fmt.Sprintf("ratelimit:login:%s:%s", ip, email)).Err()
}

func (l *Limiter) allow(ctx context.Context, key string, max int64, window time.Duration) (bool, error) {
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	// Set expiration on first attempt. An unexpired counter would throttle
	// the client forever, so a failure here is an error, not a shrug.
	if count == 1 {
		if err := l.client.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count <= max, nil
}
