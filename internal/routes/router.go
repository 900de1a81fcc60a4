package routes

import (
	"github.com/junhot777-lab/cyber-calender/internal/handlers"
	"github.com/junhot777-lab/cyber-calender/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires every route of the application.
func SetupRoutes(r *gin.Engine) {
	r.Use(middleware.Metrics())

	r.GET("/health", handlers.HealthHandler)
	r.GET("/metrics", middleware.MetricsHandler())

	api := r.Group("/api")
	{
		// Public: reads, login and the change-notification socket.
		api.POST("/login", handlers.LoginHandler)
		api.GET("/users", handlers.ListUsersHandler)
		api.GET("/events", handlers.GetEvents)
		api.GET("/events/export.ics", handlers.ExportICS)
		api.GET("/events/export.xlsx", handlers.ExportXLSX)
		api.GET("/ws", handlers.ServeWS)

		// Mutations require a session token; the handlers additionally
		// re-check the per-action passcode and event ownership.
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.POST("/events", handlers.CreateEvent)
			protected.PUT("/events/:id", handlers.UpdateEvent)
			protected.DELETE("/events/:id", handlers.DeleteEvent)
		}
	}
}
