package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/motorides/dispatch/internal/api/handlers"
	"github.com/motorides/dispatch/internal/api/middleware"
	"github.com/motorides/dispatch/internal/domain/user"
	"github.com/motorides/dispatch/pkg/token"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, tokens *token.Manager, nrApp *newrelic.Application) {
	if nrApp != nil {
		r.Use(nrgin.Middleware(nrApp))
	}
	r.Use(middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Real-time ride event feed
	r.GET("/ws", h.HandleWebSocket)

	// Authentication and registration
	r.POST("/auth/login", h.Login)
	r.POST("/register/client", h.RegisterClient)
	r.POST("/register/driver", h.RegisterDriver)

	// Client side of the ride lifecycle
	client := r.Group("/client")
	{
		client.POST("/request-service", h.RequestService)
	}

	// Driver side
	driver := r.Group("/driver")
	{
		driver.GET("/rides", h.ListAvailableRides)
		driver.POST("/rides/:rideId/accept", h.AcceptRide)
	}

	// Ride status polling, the fallback for missed broadcasts
	r.GET("/ride/:rideId/status", h.RideStatus)

	// Chat feed
	r.GET("/chat/:rideId/messages", h.ChatHistory)
	r.POST("/chat/send", h.SendChat)

	// Admin console
	admin := r.Group("/admin", middleware.RequireRole(tokens, string(user.RoleAdmin)))
	{
		admin.GET("/drivers", h.ListDrivers)
		admin.POST("/drivers/:id/approve", h.ApproveDriver)
		admin.POST("/drivers/:id/reject", h.RejectDriver)
		admin.POST("/create-ride", h.AdminCreateRide)
		admin.POST("/rides/stop-all", h.StopAllRides)
	}
}
