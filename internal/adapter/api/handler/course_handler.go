package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"divehub/internal/usecase"
	"divehub/pkg/response"
)

type CourseHandler struct {
	courseMessagingUseCase *usecase.CourseMessagingUseCase
}

func NewCourseHandler(courseMessagingUseCase *usecase.CourseMessagingUseCase) *CourseHandler {
	return &CourseHandler{
		courseMessagingUseCase: courseMessagingUseCase,
	}
}

type sendCourseMessageRequest struct {
	Text        string `json:"text" validate:"required"`
	RecipientID string `json:"recipient_id"`
}

// ListCourses returns courses and trips the user belongs to.
func (h *CourseHandler) ListCourses(c echo.Context) error {
	userID := c.Get("uid").(string)
	limit, offset := paginationParams(c, 20)

	courses, total, err := h.courseMessagingUseCase.ListCourses(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, courses, total, limit, offset)
}

// SendMessage posts to the course feed. Staff broadcast unless they name a
// recipient; students always message the instructor.
func (h *CourseHandler) SendMessage(c echo.Context) error {
	courseID := c.Param("id")
	userID := c.Get("uid").(string)

	var req sendCourseMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.courseMessagingUseCase.SendCourseMessage(c.Request().Context(), userID, usecase.SendCourseMessageInput{
		CourseID:    courseID,
		Text:        req.Text,
		RecipientID: req.RecipientID,
	})

	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// GetMessages returns the course feed visible to this user, newest first.
func (h *CourseHandler) GetMessages(c echo.Context) error {
	courseID := c.Param("id")
	userID := c.Get("uid").(string)
	limit, offset := paginationParams(c, 50)

	messages, total, err := h.courseMessagingUseCase.GetCourseMessages(c.Request().Context(), userID, courseID, limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, messages, total, limit, offset)
}

// MarkMessageRead records the user on a broadcast's readBy set.
func (h *CourseHandler) MarkMessageRead(c echo.Context) error {
	messageID := c.Param("messageId")
	userID := c.Get("uid").(string)

	if err := h.courseMessagingUseCase.MarkMessageRead(c.Request().Context(), userID, messageID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

// GetReadReceipt returns read progress for a broadcast, staff only.
func (h *CourseHandler) GetReadReceipt(c echo.Context) error {
	messageID := c.Param("messageId")
	userID := c.Get("uid").(string)

	receipt, err := h.courseMessagingUseCase.GetReadReceipt(c.Request().Context(), userID, messageID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, receipt)
}
