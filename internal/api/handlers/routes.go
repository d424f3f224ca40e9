package handlers

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the REST API under /api. authMiddleware guards everything
// except registration, login and token refresh; extra runs after it on protected routes.
func (h *Handlers) RegisterRoutes(r *gin.Engine, authMiddleware gin.HandlerFunc, extra ...gin.HandlerFunc) *gin.RouterGroup {
	api := r.Group("/api")

	// Public auth routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)
	}

	protected := api.Group("")
	protected.Use(authMiddleware)
	protected.Use(extra...)

	// Users
	users := protected.Group("/users")
	{
		users.GET("/me", h.User.GetCurrentUser)
		users.PUT("/me", h.User.UpdateCurrentUser)
		users.GET("/me/assignments", h.User.Assignments)
	}

	// Projects
	projects := protected.Group("/projects")
	{
		projects.GET("", h.Project.List)
		projects.POST("", h.Project.Create)
		projects.GET("/:id", h.Project.Get)
		projects.PUT("/:id", h.Project.Update)
		projects.DELETE("/:id", h.Project.Delete)
		projects.GET("/:id/summary", h.Project.Summary)
		projects.GET("/:id/activity", h.Activity.GetProjectActivities)

		projects.GET("/:id/members", h.Member.List)
		projects.POST("/:id/members", h.Member.Create)
		projects.PUT("/:id/members/:memberId", h.Member.Update)
		projects.DELETE("/:id/members/:memberId", h.Member.Delete)

		projects.GET("/:id/invitations", h.Invitation.List)
		projects.POST("/:id/invitations", h.Invitation.Invite)

		projects.GET("/:id/equipment", h.Equipment.List)
		projects.POST("/:id/equipment", h.Equipment.Create)

		projects.GET("/:id/vdcr", h.VDCR.List)
		projects.POST("/:id/vdcr", h.VDCR.Create)
		projects.GET("/:id/vdcr/buckets", h.VDCR.Buckets)
		projects.GET("/:id/vdcr/export.csv", h.VDCR.Export)
	}

	protected.POST("/invitations/accept/:token", h.Invitation.Accept)

	// Equipment
	equipment := protected.Group("/equipment")
	{
		equipment.GET("/:id", h.Equipment.Get)
		equipment.PUT("/:id", h.Equipment.Update)
		equipment.DELETE("/:id", h.Equipment.Delete)
		equipment.GET("/:id/activity", h.Equipment.Activity)
	}

	// VDCR
	docs := protected.Group("/vdcr")
	{
		docs.PUT("/:id", h.VDCR.Update)
		docs.DELETE("/:id", h.VDCR.Delete)
		docs.GET("/:id/activity", h.VDCR.Activity)
	}

	// Notifications
	notifications := protected.Group("/notifications")
	{
		notifications.GET("", h.Notification.List)
		notifications.GET("/count", h.Notification.Count)
		notifications.PUT("/:id/read", h.Notification.MarkRead)
		notifications.PUT("/read-all", h.Notification.MarkAllRead)
		notifications.DELETE("/:id", h.Notification.Delete)
	}

	return protected
}
