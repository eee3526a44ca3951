package router

import (
	"github.com/labstack/echo/v4"

	"divehub/internal/adapter/api/handler"
	"divehub/internal/adapter/api/middleware"
)

func SetupNotificationRouter(e *echo.Echo, notificationHandler *handler.NotificationHandler, authMiddleware *middleware.AuthMiddleware) {
	notificationGroup := e.Group("/v1/notifications")
	notificationGroup.Use(authMiddleware.Authenticate)

	notificationGroup.GET("", notificationHandler.ListNotifications)      // GET /v1/notifications - List notifications
	notificationGroup.GET("/unread-counts", notificationHandler.GetUnreadCounts) // GET /v1/notifications/unread-counts - Badge counts
	notificationGroup.PUT("/:id/read", notificationHandler.MarkRead)      // PUT /v1/notifications/:id/read - Mark as read
}
