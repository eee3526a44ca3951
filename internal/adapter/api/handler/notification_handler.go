package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"divehub/internal/usecase"
	"divehub/pkg/response"
)

type NotificationHandler struct {
	notificationUseCase *usecase.NotificationUseCase
}

func NewNotificationHandler(notificationUseCase *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
	}
}

// ListNotifications returns the user's notifications, newest first.
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	userID := c.Get("uid").(string)
	limit, offset := paginationParams(c, 20)

	notifications, total, err := h.notificationUseCase.ListNotifications(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, notifications, total, limit, offset)
}

// GetUnreadCounts returns per-category unread badge counts.
func (h *NotificationHandler) GetUnreadCounts(c echo.Context) error {
	userID := c.Get("uid").(string)

	counts, err := h.notificationUseCase.UnreadCounts(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, counts)
}

// MarkRead marks a single notification as read. Calling it twice is a no-op.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	notificationID := c.Param("id")
	userID := c.Get("uid").(string)

	if err := h.notificationUseCase.MarkRead(c.Request().Context(), userID, notificationID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}
