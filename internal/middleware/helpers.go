// internal/middleware/helpers.go
package middleware

import (
	"userhub-service/internal/domain/user"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetUserID gets the authenticated account id from context.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// MustGetUserID gets the account id from context or panics. Only for
// handlers mounted behind Auth().
func MustGetUserID(c *gin.Context) uuid.UUID {
	id, exists := GetUserID(c)
	if !exists {
		panic("user_id not found in context")
	}
	return id
}

// GetRole gets the authenticated role from context.
func GetRole(c *gin.Context) (user.Role, bool) {
	v, exists := c.Get("role")
	if !exists {
		return "", false
	}
	role, ok := v.(user.Role)
	return role, ok
}

// IsAuthenticated checks if request is authenticated.
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get("user_id")
	return exists
}
