package handler

import (
	"github.com/labstack/echo/v4"

	"divehub/internal/usecase"
	"divehub/pkg/errors"
	"divehub/pkg/response"
)

type ProfileHandler struct {
	profileUseCase *usecase.ProfileUseCase
}

func NewProfileHandler(profileUseCase *usecase.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
	}
}

// Register creates an auth user and the matching diver profile.
func (h *ProfileHandler) Register(c echo.Context) error {
	var req usecase.RegisterInput
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	profile, err := h.profileUseCase.Register(c.Request().Context(), req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, profile)
}

// GetMe returns the authenticated user's profile.
func (h *ProfileHandler) GetMe(c echo.Context) error {
	userID := c.Get("uid").(string)

	profile, err := h.profileUseCase.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

// GetProfile returns another diver's profile.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	profile, err := h.profileUseCase.GetProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

// UpdateMe updates the authenticated user's profile fields.
func (h *ProfileHandler) UpdateMe(c echo.Context) error {
	var req usecase.UpdateProfileInput
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	profile, err := h.profileUseCase.UpdateProfile(c.Request().Context(), userID, req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

// UploadPhoto stores a profile photo and saves its public URL.
func (h *ProfileHandler) UploadPhoto(c echo.Context) error {
	userID := c.Get("uid").(string)

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return response.Error(c, errors.BadRequest("Photo file is required", err))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Failed to read uploaded file", err))
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")

	url, err := h.profileUseCase.UploadPhoto(c.Request().Context(), userID, file, contentType)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"photo_url": url})
}
