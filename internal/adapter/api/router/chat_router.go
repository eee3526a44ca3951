package router

import (
	"github.com/labstack/echo/v4"

	"divehub/internal/adapter/api/handler"
	"divehub/internal/adapter/api/middleware"
)

// SetupChatRouter sets up all chat-related routes (excluding WebSocket)
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	chatGroup := e.Group("/v1/chats")
	chatGroup.Use(authMiddleware.Authenticate)

	// Chat management
	chatGroup.POST("", chatHandler.CreateChat)        // POST /v1/chats - Create direct or group chat
	chatGroup.GET("", chatHandler.GetUserChats)       // GET /v1/chats - Get user's chats
	chatGroup.GET("/:id", chatHandler.GetChatByID)    // GET /v1/chats/:id - Get specific chat
	chatGroup.DELETE("/:id", chatHandler.DeleteChat)  // DELETE /v1/chats/:id - Delete chat for this user
	chatGroup.POST("/:id/leave", chatHandler.LeaveChat) // POST /v1/chats/:id/leave - Leave group chat

	// Message management
	chatGroup.POST("/:id/messages", chatHandler.SendMessage)                  // POST /v1/chats/:id/messages - Send message
	chatGroup.GET("/:id/messages", chatHandler.GetChatMessages)               // GET /v1/chats/:id/messages - Get chat messages
	chatGroup.DELETE("/:id/messages/:messageId", chatHandler.DeleteMessage)   // DELETE /v1/chats/:id/messages/:messageId - Delete for self
}
