// internal/service/user/user.go
package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"userhub-service/internal/domain/user"
	xerrors "userhub-service/internal/pkg/errors"
	"userhub-service/internal/pkg/jwt"
	"userhub-service/internal/pkg/security"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Repository is the persistence collaborator. Each call is atomic; the
// service never issues more than one mutating call per use case, so a
// cancelled context can not leave an account half-updated.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindByNickname(ctx context.Context, nickname string) (*user.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	Create(ctx context.Context, u *user.User) error
	Update(ctx context.Context, u *user.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	RecordLoginFailure(ctx context.Context, id uuid.UUID, threshold int) (attempts int, locked bool, err error)
	RecordLoginSuccess(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, offset, limit int, role *user.Role) ([]*user.User, error)
	Count(ctx context.Context, role *user.Role) (int, error)
}

// Service orchestrates the account lifecycle: registration, login,
// email verification, password reset, lock management, and account CRUD.
type Service struct {
	repo             Repository
	hasher           *security.Hasher
	jwtManager       *jwt.Manager
	notifier         Notifier
	maxLoginAttempts int
	logger           *zap.Logger
}

func NewService(
	repo Repository,
	hasher *security.Hasher,
	jwtManager *jwt.Manager,
	notifier Notifier,
	maxLoginAttempts int,
	logger *zap.Logger,
) *Service {
	if maxLoginAttempts < 1 {
		maxLoginAttempts = 1
	}
	return &Service{
		repo:             repo,
		hasher:           hasher,
		jwtManager:       jwtManager,
		notifier:         notifier,
		maxLoginAttempts: maxLoginAttempts,
		logger:           logger,
	}
}

// ========== Registration ==========

// Register creates a new unverified account and emails its verification
// link. A failed email send does not roll the account back; it surfaces as
// ErrEmailDelivery alongside the created account.
func (s *Service) Register(ctx context.Context, req *user.RegisterRequest) (*user.Response, error) {
	if err := user.ValidateEmail(req.Email); err != nil {
		return nil, xerrors.Validation("%s", err)
	}
	if err := user.ValidatePassword(req.Password); err != nil {
		return nil, xerrors.Validation("%s", err)
	}

	nickname := req.Nickname
	if nickname == "" {
		n, err := s.pickNickname(ctx)
		if err != nil {
			return nil, err
		}
		nickname = n
	} else if err := user.ValidateNickname(nickname); err != nil {
		return nil, xerrors.Validation("%s", err)
	}

	// Conflicts are checked up front for a precise error, and again by the
	// unique indexes at insert time in case of a concurrent registration.
	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, xerrors.ErrEmailExists
	} else if !errors.Is(err, xerrors.ErrNotFound) {
		return nil, s.internal("failed to check email", err)
	}
	if _, err := s.repo.FindByNickname(ctx, nickname); err == nil {
		return nil, xerrors.ErrNicknameExists
	} else if !errors.Is(err, xerrors.ErrNotFound) {
		return nil, s.internal("failed to check nickname", err)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, s.internal("failed to hash password", err)
	}

	u := user.New(req.Email, nickname, hashed)
	setOptional(&u.FirstName, req.FirstName)
	setOptional(&u.LastName, req.LastName)

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, xerrors.ErrEmailExists) || errors.Is(err, xerrors.ErrNicknameExists) {
			return nil, err
		}
		return nil, s.internal("failed to create user", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", u.ID.String()),
		zap.String("nickname", u.Nickname),
	)

	if err := s.notifier.SendVerification(ctx, u, u.VerificationToken.String); err != nil {
		return u.ToResponse(), xerrors.ErrEmailDelivery
	}
	return u.ToResponse(), nil
}

// CreateUser is the administrative variant: the account is built already
// verified with an explicit role and inserted in one commit. No verification
// email is sent and no token ever exists for it.
func (s *Service) CreateUser(ctx context.Context, req *user.CreateRequest) (*user.Response, error) {
	role, err := user.ParseRole(req.Role)
	if err != nil {
		return nil, xerrors.Validation("%s", err)
	}
	if err := user.ValidateEmail(req.Email); err != nil {
		return nil, xerrors.Validation("%s", err)
	}
	if err := user.ValidatePassword(req.Password); err != nil {
		return nil, xerrors.Validation("%s", err)
	}

	nickname := req.Nickname
	if nickname == "" {
		n, err := s.pickNickname(ctx)
		if err != nil {
			return nil, err
		}
		nickname = n
	} else if err := user.ValidateNickname(nickname); err != nil {
		return nil, xerrors.Validation("%s", err)
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, xerrors.ErrEmailExists
	} else if !errors.Is(err, xerrors.ErrNotFound) {
		return nil, s.internal("failed to check email", err)
	}
	if _, err := s.repo.FindByNickname(ctx, nickname); err == nil {
		return nil, xerrors.ErrNicknameExists
	} else if !errors.Is(err, xerrors.ErrNotFound) {
		return nil, s.internal("failed to check nickname", err)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, s.internal("failed to hash password", err)
	}

	u := user.New(req.Email, nickname, hashed)
	setOptional(&u.FirstName, req.FirstName)
	setOptional(&u.LastName, req.LastName)
	u.Role = role
	u.EmailVerified = true
	u.VerificationToken = sql.NullString{}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, xerrors.ErrEmailExists) || errors.Is(err, xerrors.ErrNicknameExists) {
			return nil, err
		}
		return nil, s.internal("failed to create user", err)
	}

	s.logger.Info("user created by administrator",
		zap.String("user_id", u.ID.String()),
		zap.String("role", role.String()),
	)
	return u.ToResponse(), nil
}

// pickNickname generates a default nickname, retrying on the rare collision.
func (s *Service) pickNickname(ctx context.Context) (string, error) {
	for i := 0; i < 5; i++ {
		candidate := user.GenerateNickname()
		_, err := s.repo.FindByNickname(ctx, candidate)
		if errors.Is(err, xerrors.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", s.internal("failed to check nickname", err)
		}
	}
	return "", s.internal("failed to generate nickname", fmt.Errorf("exhausted attempts"))
}

// ========== Login ==========

// Login authenticates by email and password and issues an access token.
// Unknown email and wrong password share one generic error so callers can
// not enumerate accounts; locked and unverified states are reported
// distinctly. An attempt against an unverified account short-circuits before
// the password check and does not touch the failure counter.
func (s *Service) Login(ctx context.Context, req *user.LoginRequest) (*user.LoginResponse, error) {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, xerrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, s.internal("failed to look up account", err)
	}

	if !u.EmailVerified {
		return nil, xerrors.ErrEmailNotVerified
	}
	if u.IsLocked {
		return nil, xerrors.ErrAccountLocked
	}

	ok, err := s.hasher.Verify(req.Password, u.HashedPassword)
	if err != nil {
		return nil, s.internal("failed to verify password", err)
	}
	if !ok {
		attempts, locked, err := s.repo.RecordLoginFailure(ctx, u.ID, s.maxLoginAttempts)
		if err != nil {
			return nil, s.internal("failed to record login failure", err)
		}
		s.logger.Warn("login failed",
			zap.String("user_id", u.ID.String()),
			zap.Int("failed_attempts", attempts),
			zap.Bool("locked", locked),
		)
		if locked {
			if err := s.notifier.SendAccountLocked(ctx, u); err != nil {
				s.logger.Error("failed to send account locked email", zap.Error(err))
			}
		}
		return nil, xerrors.ErrInvalidCredentials
	}

	if err := s.repo.RecordLoginSuccess(ctx, u.ID); err != nil {
		return nil, s.internal("failed to record login success", err)
	}
	u.RecordLoginSuccess(time.Now())

	token, _, err := s.jwtManager.Generator.Generate(u.ID.String(), u.Role)
	if err != nil {
		return nil, s.internal("failed to issue token", err)
	}

	expiresAt := time.Now().Add(s.jwtManager.Generator.Ttl)
	s.logger.Info("user logged in", zap.String("user_id", u.ID.String()))

	return &user.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.jwtManager.Generator.Ttl.Seconds()),
		ExpiresAt:   expiresAt,
		User:        u.ToResponse(),
	}, nil
}

// ========== Email Verification ==========

// VerifyEmail consumes a verification token. Failures are uniform: an
// unknown id, a cleared token, and a mismatched token all produce the same
// error, so the endpoint does not reveal which accounts exist.
func (s *Service) VerifyEmail(ctx context.Context, id uuid.UUID, token string) (*user.Response, error) {
	u, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, xerrors.ErrInvalidToken
	}
	if err != nil {
		return nil, s.internal("failed to look up account", err)
	}

	if !u.VerifyEmail(token) {
		return nil, xerrors.ErrInvalidToken
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, s.internal("failed to persist verification", err)
	}

	s.logger.Info("email verified", zap.String("user_id", u.ID.String()))
	return u.ToResponse(), nil
}

// ResendVerification issues a fresh token for a still-unverified account and
// emails it.
func (s *Service) ResendVerification(ctx context.Context, id uuid.UUID) error {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return xerrors.ErrNotFound
		}
		return s.internal("failed to look up account", err)
	}
	if u.EmailVerified {
		return xerrors.Validation("email is already verified")
	}

	u.VerificationToken.String = user.GenerateVerificationToken()
	u.VerificationToken.Valid = true
	if err := s.repo.Update(ctx, u); err != nil {
		return s.internal("failed to rotate verification token", err)
	}

	if err := s.notifier.SendVerification(ctx, u, u.VerificationToken.String); err != nil {
		return xerrors.ErrEmailDelivery
	}
	return nil
}

// ========== Password & Lock Management ==========

// ResetPassword replaces the password and clears any lockout in one commit.
func (s *Service) ResetPassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	if err := user.ValidatePassword(newPassword); err != nil {
		return xerrors.Validation("%s", err)
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return xerrors.ErrNotFound
		}
		return s.internal("failed to look up account", err)
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return s.internal("failed to hash password", err)
	}

	u.ApplyPasswordReset(hashed)
	if err := s.repo.Update(ctx, u); err != nil {
		return s.internal("failed to persist password reset", err)
	}

	s.logger.Info("password reset", zap.String("user_id", u.ID.String()))
	if err := s.notifier.SendPasswordChanged(ctx, u); err != nil {
		s.logger.Error("failed to send password changed email", zap.Error(err))
	}
	return nil
}

// UnlockAccount is the administrative unlock. Unlocking an account that is
// not locked is a reported no-op.
func (s *Service) UnlockAccount(ctx context.Context, id uuid.UUID) error {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return xerrors.ErrNotFound
		}
		return s.internal("failed to look up account", err)
	}

	if !u.Unlock() {
		return xerrors.Validation("account is not locked")
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return s.internal("failed to persist unlock", err)
	}
	s.logger.Info("account unlocked", zap.String("user_id", u.ID.String()))
	return nil
}

// ========== Account CRUD ==========

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*user.Response, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrNotFound
		}
		return nil, s.internal("failed to look up account", err)
	}
	return u.ToResponse(), nil
}

// UpdateUser applies a partial update. Email, nickname, password, and role
// changes go through the same validation as registration.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, req *user.UpdateRequest) (*user.Response, error) {
	if req.Empty() {
		return nil, xerrors.Validation("at least one field must be provided for update")
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrNotFound
		}
		return nil, s.internal("failed to look up account", err)
	}

	if req.Email != nil {
		if err := user.ValidateEmail(*req.Email); err != nil {
			return nil, xerrors.Validation("%s", err)
		}
		if other, err := s.repo.FindByEmail(ctx, *req.Email); err == nil && other.ID != u.ID {
			return nil, xerrors.ErrEmailExists
		} else if err != nil && !errors.Is(err, xerrors.ErrNotFound) {
			return nil, s.internal("failed to check email", err)
		}
		u.Email = strings.ToLower(*req.Email)
	}

	if req.Nickname != nil {
		if err := user.ValidateNickname(*req.Nickname); err != nil {
			return nil, xerrors.Validation("%s", err)
		}
		if other, err := s.repo.FindByNickname(ctx, *req.Nickname); err == nil && other.ID != u.ID {
			return nil, xerrors.ErrNicknameExists
		} else if err != nil && !errors.Is(err, xerrors.ErrNotFound) {
			return nil, s.internal("failed to check nickname", err)
		}
		u.Nickname = *req.Nickname
	}

	if req.Password != nil {
		if err := user.ValidatePassword(*req.Password); err != nil {
			return nil, xerrors.Validation("%s", err)
		}
		hashed, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, s.internal("failed to hash password", err)
		}
		u.HashedPassword = hashed
	}

	if req.Role != nil {
		role, err := user.ParseRole(*req.Role)
		if err != nil {
			return nil, xerrors.Validation("%s", err)
		}
		u.Role = role
	}

	if req.FirstName != nil {
		setOptional(&u.FirstName, *req.FirstName)
	}
	if req.LastName != nil {
		setOptional(&u.LastName, *req.LastName)
	}
	if req.Bio != nil {
		setOptional(&u.Bio, *req.Bio)
	}
	if req.ProfilePictureURL != nil {
		setOptional(&u.ProfilePictureURL, *req.ProfilePictureURL)
	}

	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, xerrors.ErrEmailExists) || errors.Is(err, xerrors.ErrNicknameExists) {
			return nil, err
		}
		return nil, s.internal("failed to persist update", err)
	}
	return u.ToResponse(), nil
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, xerrors.ErrNotFound) {
		return xerrors.ErrNotFound
	}
	if err != nil {
		return s.internal("failed to delete account", err)
	}
	s.logger.Info("account deleted", zap.String("user_id", id.String()))
	return nil
}

// ListUsers returns one page of accounts with the total count.
func (s *Service) ListUsers(ctx context.Context, offset, limit int, roleFilter string) (*user.ListResponse, error) {
	if limit <= 0 {
		return nil, xerrors.Validation("limit must be greater than 0")
	}
	if offset < 0 {
		offset = 0
	}

	var role *user.Role
	if roleFilter != "" {
		parsed, err := user.ParseRole(roleFilter)
		if err != nil {
			return nil, xerrors.Validation("%s", err)
		}
		role = &parsed
	}

	users, err := s.repo.List(ctx, offset, limit, role)
	if err != nil {
		return nil, s.internal("failed to list accounts", err)
	}
	total, err := s.repo.Count(ctx, role)
	if err != nil {
		return nil, s.internal("failed to count accounts", err)
	}

	items := make([]*user.Response, 0, len(users))
	for _, u := range users {
		items = append(items, u.ToResponse())
	}

	return &user.ListResponse{
		Items: items,
		Total: total,
		Page:  offset/limit + 1,
		Size:  len(items),
	}, nil
}

// EnsureAdminExists seeds the bootstrap administrator on startup if the
// configured email is not registered yet.
func (s *Service) EnsureAdminExists(ctx context.Context, email, password, nickname string) error {
	if email == "" || password == "" {
		return nil
	}

	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, xerrors.ErrNotFound) {
		return s.internal("failed to check admin account", err)
	}

	if err := user.ValidatePassword(password); err != nil {
		return xerrors.Validation("admin password: %s", err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return s.internal("failed to hash admin password", err)
	}

	u := user.New(email, nickname, hashed)
	u.Role = user.RoleAdmin
	u.EmailVerified = true
	u.VerificationToken.Valid = false
	u.VerificationToken.String = ""

	if err := s.repo.Create(ctx, u); err != nil {
		return s.internal("failed to create admin account", err)
	}
	s.logger.Info("bootstrap admin created", zap.String("email", email))
	return nil
}

// ========== Helpers ==========

// internal logs the underlying cause and returns the opaque internal kind.
func (s *Service) internal(msg string, err error) error {
	s.logger.Error(msg, zap.Error(err))
	return fmt.Errorf("%w: %s", xerrors.ErrInternal, msg)
}

func setOptional(dst *sql.NullString, v string) {
	*dst = sql.NullString{String: v, Valid: v != ""}
}
