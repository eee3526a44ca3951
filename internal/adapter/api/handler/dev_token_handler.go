package handler

import (
	"github.com/labstack/echo/v4"

	"divehub/internal/domain/repository"
	"divehub/internal/infrastructure/firebase"
	"divehub/pkg/errors"
	"divehub/pkg/response"
)

// DevTokenHandler mints locally signed tokens for development. Its routes are
// only registered when the environment is "development".
type DevTokenHandler struct {
	minter      *firebase.DevTokenMinter
	profileRepo repository.ProfileRepository
}

func NewDevTokenHandler(minter *firebase.DevTokenMinter, profileRepo repository.ProfileRepository) *DevTokenHandler {
	return &DevTokenHandler{
		minter:      minter,
		profileRepo: profileRepo,
	}
}

// GenerateToken mints a token for the given user ID after checking the
// profile exists.
func (h *DevTokenHandler) GenerateToken(c echo.Context) error {
	userID := c.Param("id")

	profile, err := h.profileRepo.GetByID(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	token, err := h.minter.Mint(profile.ID)
	if err != nil {
		return response.Error(c, errors.Internal("Failed to mint token", err))
	}

	return response.Success(c, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":           profile.ID,
			"email":        profile.Email,
			"display_name": profile.DisplayName,
		},
	})
}
