package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"divehub/internal/usecase"
	"divehub/pkg/response"
)

type BuddyHandler struct {
	buddyUseCase *usecase.BuddyUseCase
}

func NewBuddyHandler(buddyUseCase *usecase.BuddyUseCase) *BuddyHandler {
	return &BuddyHandler{
		buddyUseCase: buddyUseCase,
	}
}

type buddyRequestRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type buddyRespondRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Accept bool   `json:"accept"`
}

// SendRequest creates a pending buddy request towards another diver.
func (h *BuddyHandler) SendRequest(c echo.Context) error {
	var req buddyRequestRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	if err := h.buddyUseCase.SendRequest(c.Request().Context(), userID, req.UserID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Buddy request sent"})
}

// Respond accepts or declines a pending buddy request.
func (h *BuddyHandler) Respond(c echo.Context) error {
	var req buddyRespondRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	if err := h.buddyUseCase.Respond(c.Request().Context(), userID, req.UserID, req.Accept); err != nil {
		return response.Error(c, err)
	}

	if req.Accept {
		return response.Success(c, map[string]string{"message": "Buddy request accepted"})
	}
	return response.Success(c, map[string]string{"message": "Buddy request declined"})
}

// Remove deletes the buddy relationship in whatever state it is in.
func (h *BuddyHandler) Remove(c echo.Context) error {
	buddyID := c.Param("id")
	userID := c.Get("uid").(string)

	if err := h.buddyUseCase.Remove(c.Request().Context(), userID, buddyID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

// ListBuddies returns the user's buddy list, pending entries included.
func (h *BuddyHandler) ListBuddies(c echo.Context) error {
	userID := c.Get("uid").(string)

	buddies, err := h.buddyUseCase.ListBuddies(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, buddies)
}

// SearchProfiles finds divers by display name or email.
func (h *BuddyHandler) SearchProfiles(c echo.Context) error {
	userID := c.Get("uid").(string)
	query := c.QueryParam("q")

	profiles, err := h.buddyUseCase.SearchProfiles(c.Request().Context(), userID, query)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profiles)
}
