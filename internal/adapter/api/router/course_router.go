package router

import (
	"github.com/labstack/echo/v4"

	"divehub/internal/adapter/api/handler"
	"divehub/internal/adapter/api/middleware"
)

func SetupCourseRouter(e *echo.Echo, courseHandler *handler.CourseHandler, authMiddleware *middleware.AuthMiddleware) {
	courseGroup := e.Group("/v1/courses")
	courseGroup.Use(authMiddleware.Authenticate)

	courseGroup.GET("", courseHandler.ListCourses)               // GET /v1/courses - Courses and trips for this user
	courseGroup.POST("/:id/messages", courseHandler.SendMessage) // POST /v1/courses/:id/messages - Post to the feed
	courseGroup.GET("/:id/messages", courseHandler.GetMessages)  // GET /v1/courses/:id/messages - Read the feed

	courseGroup.PUT("/messages/:messageId/read", courseHandler.MarkMessageRead)    // PUT /v1/courses/messages/:messageId/read
	courseGroup.GET("/messages/:messageId/receipt", courseHandler.GetReadReceipt) // GET /v1/courses/messages/:messageId/receipt
}
