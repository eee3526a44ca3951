package router

import (
	"github.com/labstack/echo/v4"

	"divehub/internal/adapter/api/handler"
)

// SetupDevRouter registers development-only token endpoints. It is a no-op
// outside the development environment.
func SetupDevRouter(e *echo.Echo, devTokenHandler *handler.DevTokenHandler, environment string) {
	if environment != "development" {
		return
	}

	devGroup := e.Group("/v1/dev")
	devGroup.GET("/token/:id", devTokenHandler.GenerateToken)
}
