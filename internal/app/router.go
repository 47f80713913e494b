// internal/app/router.go
package app

import (
	"userhub-service/internal/domain/user"
	userHandler "userhub-service/internal/handlers/user"
	"userhub-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	UserHandler    *userHandler.Handler
	AuthMiddleware *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/register", h.UserHandler.Register)
		authPublic.POST("/login", h.UserHandler.Login)
		authPublic.GET("/verify-email/:id/:token", h.UserHandler.VerifyEmail)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.GET("/me", h.UserHandler.Me)
		authProtected.PUT("/profile", h.UserHandler.UpdateMe)
		authProtected.POST("/resend-verification", h.UserHandler.ResendVerification)
	}

	// ==================== Account Administration ====================
	// Role sets are spelled out per route; there is no hierarchy between
	// MANAGER and ADMIN, each route names exactly who may call it.
	admin := api.Group("/users")
	admin.Use(h.AuthMiddleware.Auth())
	{
		staff := admin.Group("")
		staff.Use(h.AuthMiddleware.RequireRole(user.RoleAdmin, user.RoleManager))
		{
			staff.GET("", h.UserHandler.ListUsers)
			staff.POST("", h.UserHandler.CreateUser)
			staff.GET("/:id", h.UserHandler.GetUser)
			staff.PUT("/:id", h.UserHandler.UpdateUser)
			staff.PUT("/:id/reset-password", h.UserHandler.ResetPassword)
			staff.PUT("/:id/unlock", h.UserHandler.UnlockAccount)
		}

		adminOnly := admin.Group("")
		adminOnly.Use(h.AuthMiddleware.RequireRole(user.RoleAdmin))
		{
			adminOnly.DELETE("/:id", h.UserHandler.DeleteUser)
		}
	}
}
