package router

import (
	"github.com/labstack/echo/v4"

	"divehub/internal/adapter/api/handler"
	"divehub/internal/adapter/api/middleware"
)

func SetupBuddyRouter(e *echo.Echo, buddyHandler *handler.BuddyHandler, authMiddleware *middleware.AuthMiddleware) {
	buddyGroup := e.Group("/v1/buddies")
	buddyGroup.Use(authMiddleware.Authenticate)

	buddyGroup.GET("", buddyHandler.ListBuddies)         // GET /v1/buddies - List buddy relationships
	buddyGroup.POST("/requests", buddyHandler.SendRequest) // POST /v1/buddies/requests - Send buddy request
	buddyGroup.POST("/respond", buddyHandler.Respond)    // POST /v1/buddies/respond - Accept or decline
	buddyGroup.DELETE("/:id", buddyHandler.Remove)       // DELETE /v1/buddies/:id - Remove buddy
	buddyGroup.GET("/search", buddyHandler.SearchProfiles) // GET /v1/buddies/search?q= - Find divers
}
