// internal/handlers/user/handler.go
package user

import (
	"errors"
	"net/http"
	"strconv"

	"userhub-service/internal/domain/user"
	"userhub-service/internal/middleware"
	xerrors "userhub-service/internal/pkg/errors"
	"userhub-service/internal/pkg/ratelimit"
	"userhub-service/internal/pkg/response"
	userService "userhub-service/internal/service/user"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	svc     *userService.Service
	limiter *ratelimit.Limiter
	logger  *zap.Logger
}

func NewHandler(svc *userService.Service, limiter *ratelimit.Limiter, logger *zap.Logger) *Handler {
	return &Handler{
		svc:     svc,
		limiter: limiter,
		logger:  logger,
	}
}

// statusFor maps each error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, xerrors.ErrValidation), errors.Is(err, xerrors.ErrInvalidToken):
		return http.StatusBadRequest
	case errors.Is(err, xerrors.ErrInvalidCredentials), errors.Is(err, xerrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, xerrors.ErrEmailNotVerified), errors.Is(err, xerrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, xerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, xerrors.ErrEmailExists), errors.Is(err, xerrors.ErrNicknameExists):
		return http.StatusConflict
	case errors.Is(err, xerrors.ErrAccountLocked):
		return http.StatusLocked
	case errors.Is(err, xerrors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, xerrors.ErrEmailDelivery):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, message string, err error) {
	response.Error(c, statusFor(err), message, err)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid account id", xerrors.ErrValidation)
		return uuid.Nil, false
	}
	return id, true
}

// ========== Public endpoints ==========

// Register handles self-service registration.
func (h *Handler) Register(c *gin.Context) {
	allowed, err := h.limiter.AllowRegistration(c.Request.Context(), c.ClientIP())
	if err != nil {
		h.logger.Error("rate limiter error", zap.Error(err))
	} else if !allowed {
		h.fail(c, "too many registrations, please try again later", xerrors.ErrRateLimited)
		return
	}

	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", xerrors.ErrValidation)
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), &req)
	if errors.Is(err, xerrors.ErrEmailDelivery) {
		// The account exists; the caller should know the email did not go out.
		c.JSON(http.StatusCreated, response.Response{
			Success: true,
			Message: "account created but verification email could not be sent",
			Code:    xerrors.Code(err),
			Data:    resp,
		})
		return
	}
	if err != nil {
		h.fail(c, "registration failed", err)
		return
	}

	response.Success(c, http.StatusCreated, "registration successful", resp)
}

// Login handles email/password authentication.
func (h *Handler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", xerrors.ErrValidation)
		return
	}

	allowed, err := h.limiter.AllowLogin(c.Request.Context(), c.ClientIP(), req.Email)
	if err != nil {
		h.logger.Error("rate limiter error", zap.Error(err))
	} else if !allowed {
		h.fail(c, "too many login attempts, please try again later", xerrors.ErrRateLimited)
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, "login failed", err)
		return
	}

	if err := h.limiter.Reset(c.Request.Context(), c.ClientIP(), req.Email); err != nil {
		h.logger.Error("failed to reset rate limit counter", zap.Error(err))
	}
	response.Success(c, http.StatusOK, "login successful", resp)
}

// VerifyEmail consumes a verification link.
func (h *Handler) VerifyEmail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	resp, err := h.svc.VerifyEmail(c.Request.Context(), id, c.Param("token"))
	if err != nil {
		h.fail(c, "email verification failed", err)
		return
	}
	response.Success(c, http.StatusOK, "email verified", resp)
}

// ========== Authenticated endpoints ==========

// Me returns the caller's own account.
func (h *Handler) Me(c *gin.Context) {
	id := middleware.MustGetUserID(c)
	resp, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "failed to load profile", err)
		return
	}
	response.Success(c, http.StatusOK, "profile", resp)
}

// UpdateMe lets the caller update their own profile. Role changes are
// stripped: only the admin surface can change roles.
func (h *Handler) UpdateMe(c *gin.Context) {
	id := middleware.MustGetUserID(c)

	var req user.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", xerrors.ErrValidation)
		return
	}
	req.Role = nil

	resp, err := h.svc.UpdateUser(c.Request.Context(), id, &req)
	if err != nil {
		h.fail(c, "profile update failed", err)
		return
	}
	response.Success(c, http.StatusOK, "profile updated", resp)
}

// ResendVerification rotates and re-sends the caller's verification token.
func (h *Handler) ResendVerification(c *gin.Context) {
	id := middleware.MustGetUserID(c)

	allowed, err := h.limiter.AllowVerificationResend(c.Request.Context(), id.String())
	if err != nil {
		h.logger.Error("rate limiter error", zap.Error(err))
	} else if !allowed {
		h.fail(c, "too many resend requests, please try again later", xerrors.ErrRateLimited)
		return
	}

	if err := h.svc.ResendVerification(c.Request.Context(), id); err != nil {
		h.fail(c, "failed to resend verification email", err)
		return
	}
	response.Success(c, http.StatusOK, "verification email sent", nil)
}

// ========== Admin endpoints ==========

func (h *Handler) ListUsers(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	resp, err := h.svc.ListUsers(c.Request.Context(), offset, limit, c.Query("role"))
	if err != nil {
		h.fail(c, "failed to list accounts", err)
		return
	}
	response.Success(c, http.StatusOK, "accounts", resp)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "failed to load account", err)
		return
	}
	response.Success(c, http.StatusOK, "account", resp)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req user.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", xerrors.ErrValidation)
		return
	}

	resp, err := h.svc.CreateUser(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, "account creation failed", err)
		return
	}
	response.Success(c, http.StatusCreated, "account created", resp)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req user.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", xerrors.ErrValidation)
		return
	}

	resp, err := h.svc.UpdateUser(c.Request.Context(), id, &req)
	if err != nil {
		h.fail(c, "account update failed", err)
		return
	}
	response.Success(c, http.StatusOK, "account updated", resp)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteUser(c.Request.Context(), id); err != nil {
		h.fail(c, "account deletion failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ResetPassword(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req user.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", xerrors.ErrValidation)
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), id, req.Password); err != nil {
		h.fail(c, "password reset failed", err)
		return
	}
	response.Success(c, http.StatusOK, "password reset", nil)
}

func (h *Handler) UnlockAccount(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.UnlockAccount(c.Request.Context(), id); err != nil {
		h.fail(c, "unlock failed", err)
		return
	}
	response.Success(c, http.StatusOK, "account unlocked", nil)
}
