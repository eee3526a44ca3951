package router

import (
	"github.com/labstack/echo/v4"

	"divehub/internal/adapter/api/handler"
	"divehub/internal/adapter/api/middleware"
)

// Handlers bundles everything Setup wires into echo routes.
type Handlers struct {
	Profile      *handler.ProfileHandler
	Chat         *handler.ChatHandler
	Buddy        *handler.BuddyHandler
	Notification *handler.NotificationHandler
	Course       *handler.CourseHandler
	WebSocket    *handler.WebSocketHandler
	Health       *handler.HealthHandler
}

func Setup(e *echo.Echo, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	SetupProfileRouter(e, h.Profile, authMiddleware)
	SetupChatRouter(e, h.Chat, authMiddleware)
	SetupBuddyRouter(e, h.Buddy, authMiddleware)
	SetupNotificationRouter(e, h.Notification, authMiddleware)
	SetupCourseRouter(e, h.Course, authMiddleware)
	SetupWebSocketRouter(e, h.WebSocket)
	SetupHealthRouter(e, h.Health)
}
