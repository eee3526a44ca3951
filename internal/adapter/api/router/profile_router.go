package router

import (
	"github.com/labstack/echo/v4"

	"divehub/internal/adapter/api/handler"
	"divehub/internal/adapter/api/middleware"
)

func SetupProfileRouter(e *echo.Echo, profileHandler *handler.ProfileHandler, authMiddleware *middleware.AuthMiddleware) {
	e.POST("/v1/auth/register", profileHandler.Register) // Public

	profileGroup := e.Group("/v1/profiles")
	profileGroup.Use(authMiddleware.Authenticate)

	profileGroup.GET("/me", profileHandler.GetMe)        // GET /v1/profiles/me
	profileGroup.PUT("/me", profileHandler.UpdateMe)     // PUT /v1/profiles/me
	profileGroup.POST("/me/photo", profileHandler.UploadPhoto) // POST /v1/profiles/me/photo
	profileGroup.GET("/:id", profileHandler.GetProfile)  // GET /v1/profiles/:id
}
