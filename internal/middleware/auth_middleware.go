// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"userhub-service/internal/domain/user"
	xerrors "userhub-service/internal/pkg/errors"
	"userhub-service/internal/pkg/jwt"
	"userhub-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthMiddleware is the authorization guard: it validates bearer tokens and
// enforces per-route allowed-role sets.
type AuthMiddleware struct {
	verifier *jwt.Verifier
}

func NewAuthMiddleware(verifier *jwt.Verifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Auth validates the bearer token. A missing, malformed, badly signed, or
// expired token is uniformly unauthenticated (401); a valid token puts the
// subject id and role into the request context.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", xerrors.ErrUnauthorized)
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", xerrors.ErrUnauthorized)
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid token subject", xerrors.ErrUnauthorized)
			return
		}

		// The verifier already rejected unknown roles.
		role, _ := user.ParseRole(claims.Role)

		c.Set("user_id", userID)
		c.Set("role", role)
		c.Set("jti", claims.ID)

		c.Next()
	}
}

// RequireRole enforces exact set membership over the closed role enum.
// There is no hierarchy: a route open to both MANAGER and ADMIN must name
// both. Must be used after Auth().
func (m *AuthMiddleware) RequireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			response.Error(c, http.StatusForbidden, "no role found - authentication required", xerrors.ErrForbidden)
			return
		}

		if !role.In(roles...) {
			response.Error(c, http.StatusForbidden, "operation not permitted", xerrors.ErrForbidden)
			return
		}

		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}
