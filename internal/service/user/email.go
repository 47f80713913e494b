// internal/service/user/email.go
package user

import (
	"context"
	"fmt"

	"userhub-service/internal/domain/user"
	"userhub-service/internal/service/email"

	"go.uber.org/zap"
)

// Notifier is the outbound notification collaborator. The orchestrator fires
// and forgets; delivery failures are reported, never retried here.
type Notifier interface {
	SendVerification(ctx context.Context, u *user.User, token string) error
	SendAccountLocked(ctx context.Context, u *user.User) error
	SendPasswordChanged(ctx context.Context, u *user.User) error
}

// Mailer composes account lifecycle emails and hands them to the SMTP
// sender.
type Mailer struct {
	sender  *email.Sender
	logger  *zap.Logger
	baseURL string
}

func NewMailer(sender *email.Sender, logger *zap.Logger, baseURL string) *Mailer {
	return &Mailer{
		sender:  sender,
		logger:  logger,
		baseURL: baseURL,
	}
}

func (m *Mailer) displayName(u *user.User) string {
	if u.FirstName.Valid && u.FirstName.String != "" {
		return u.FirstName.String
	}
	return u.Nickname
}

// SendVerification emails the one-time verification link.
func (m *Mailer) SendVerification(ctx context.Context, u *user.User, token string) error {
	verifyURL := fmt.Sprintf("%s/api/v1/auth/verify-email/%s/%s", m.baseURL, u.ID, token)

	body := fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Thanks for signing up. Please confirm your email address to activate your account:</p>
		<p><a href="%s" class="button">Verify Email</a></p>
		<p>Or copy and paste this link into your browser:</p>
		<p><a href="%s">%s</a></p>
		<p>If you didn't create this account, you can safely ignore this email.</p>
	`, m.displayName(u), verifyURL, verifyURL, verifyURL)

	if err := m.sender.Send(u.Email, "Verify Your Account", body); err != nil {
		m.logger.Error("failed to send verification email",
			zap.String("email", u.Email),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// SendAccountLocked notifies the owner that repeated failed logins locked
// the account.
func (m *Mailer) SendAccountLocked(ctx context.Context, u *user.User) error {
	body := fmt.Sprintf(`
		<h2>Account Locked</h2>
		<p>Hello %s,</p>
		<p>Your account has been locked after too many failed sign-in attempts.</p>
		<p>If this was you, contact support or wait for an administrator to unlock
		your account. If it wasn't, we recommend resetting your password once the
		account is unlocked.</p>
	`, m.displayName(u))

	if err := m.sender.Send(u.Email, "Account Locked Notification", body); err != nil {
		m.logger.Error("failed to send account locked email",
			zap.String("email", u.Email),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// SendPasswordChanged confirms a password reset.
func (m *Mailer) SendPasswordChanged(ctx context.Context, u *user.User) error {
	body := fmt.Sprintf(`
		<h2>Password Changed</h2>
		<p>Hello %s,</p>
		<p>The password for your account was just changed. If you did not request
		this, contact support immediately.</p>
	`, m.displayName(u))

	if err := m.sender.Send(u.Email, "Password Reset Confirmation", body); err != nil {
		m.logger.Error("failed to send password changed email",
			zap.String("email", u.Email),
			zap.Error(err),
		)
		return err
	}
	return nil
}
