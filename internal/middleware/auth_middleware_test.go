package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"userhub-service/internal/domain/user"
	"userhub-service/internal/middleware"
	"userhub-service/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter(t *testing.T) (*gin.Engine, *jwt.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager, err := jwt.Build(jwt.Config{
		Secret:   "test-secret",
		Issuer:   "userhub",
		Audience: "userhub-clients",
		TTL:      30 * time.Minute,
	})
	require.NoError(t, err)

	r := gin.New()
	auth := middleware.NewAuthMiddleware(manager.Verifier)

	r.GET("/me", auth.Auth(), func(c *gin.Context) {
		id := middleware.MustGetUserID(c)
		role, _ := middleware.GetRole(c)
		c.JSON(http.StatusOK, gin.H{"id": id.String(), "role": role})
	})
	r.GET("/staff", auth.Auth(), auth.RequireRole(user.RoleAdmin, user.RoleManager), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/managers-only", auth.Auth(), auth.RequireRole(user.RoleManager), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return r, manager
}

func do(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	r, manager := testRouter(t)

	t.Run("valid token reaches the handler with identity in context", func(t *testing.T) {
		subject := uuid.New().String()
		token, _, err := manager.Generator.Generate(subject, user.RoleAuthenticated)
		require.NoError(t, err)

		w := do(r, "/me", token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), subject)
		assert.Contains(t, w.Body.String(), "AUTHENTICATED")
	})

	t.Run("missing token", func(t *testing.T) {
		w := do(r, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := do(r, "/me", "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token, _, err := manager.Generator.GenerateWithTTL(uuid.New().String(), user.RoleAdmin, -time.Minute)
		require.NoError(t, err)

		w := do(r, "/me", token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("non-uuid subject", func(t *testing.T) {
		token, _, err := manager.Generator.Generate("not-a-uuid", user.RoleAdmin)
		require.NoError(t, err)

		w := do(r, "/me", token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	r, manager := testRouter(t)

	tokenFor := func(t *testing.T, role user.Role) string {
		t.Helper()
		token, _, err := manager.Generator.Generate(uuid.New().String(), role)
		require.NoError(t, err)
		return token
	}

	t.Run("member of the set passes", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do(r, "/staff", tokenFor(t, user.RoleAdmin)).Code)
		assert.Equal(t, http.StatusOK, do(r, "/staff", tokenFor(t, user.RoleManager)).Code)
	})

	t.Run("authenticated but outside the set is forbidden, not unauthenticated", func(t *testing.T) {
		w := do(r, "/staff", tokenFor(t, user.RoleAuthenticated))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("no hierarchy: admin fails a manager-only check", func(t *testing.T) {
		w := do(r, "/managers-only", tokenFor(t, user.RoleAdmin))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unauthenticated on a guarded route is 401, not 403", func(t *testing.T) {
		w := do(r, "/staff", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
