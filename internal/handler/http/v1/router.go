package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all API v1 routes. Everything except login and
// the health check sits behind the bearer-token middleware; finer role
// gates live in the service layer.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/auth/login", h.login)
	api.GET("/system/health", h.healthCheck)

	authed := api.Group("", AuthMiddleware(h.tokens, h.logger))
	{
		authed.POST("/auth/logout", h.logout)

		occurrences := authed.Group("/occurrences")
		{
			occurrences.POST("", h.createOccurrence)
			occurrences.GET("", h.listOccurrences)
			occurrences.GET("/statistics", h.occurrenceStatistics)
			occurrences.GET("/export", h.exportOccurrences)
			occurrences.GET("/:id", h.getOccurrence)
			occurrences.PUT("/:id", h.updateOccurrence)
			occurrences.PATCH("/:id/status", h.changeOccurrenceStatus)
			occurrences.DELETE("/:id", h.deleteOccurrence)
		}

		users := authed.Group("/users")
		{
			users.POST("", h.createUser)
			users.GET("", h.listUsers)
			users.GET("/:id", h.getUser)
			users.PUT("/:id", h.updateUser)
			users.DELETE("/:id", h.deleteUser)
		}

		vehicles := authed.Group("/vehicles")
		{
			vehicles.POST("", h.createVehicle)
			vehicles.GET("", h.listVehicles)
			vehicles.GET("/:id", h.getVehicle)
			vehicles.PUT("/:id", h.updateVehicle)
			vehicles.DELETE("/:id", h.deleteVehicle)
		}

		audit := authed.Group("/audit")
		{
			audit.GET("/logs", h.listAuditLogs)
			audit.GET("/user-activity", h.userActivity)
			audit.GET("/user-activity/:userId", h.userActivity)
			audit.GET("/system-activity", h.systemActivity)
		}
	}
}
