package usecase

import (
	"context"
	"io"
	"log"
	"time"

	"divehub/internal/domain/entity"
	"divehub/internal/domain/repository"
	"divehub/pkg/errors"
)

// AuthProvider abstracts the identity backend so tests can run without
// Firebase.
type AuthProvider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	VerifyToken(ctx context.Context, token string) (string, error)
}

// PhotoUploader abstracts object storage for profile photos.
type PhotoUploader interface {
	UploadProfilePhoto(ctx context.Context, file io.Reader, contentType string) (string, error)
}

type ProfileUseCase struct {
	profileRepo repository.ProfileRepository
	auth        AuthProvider
	uploader    PhotoUploader
}

func NewProfileUseCase(profileRepo repository.ProfileRepository, auth AuthProvider, uploader PhotoUploader) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: profileRepo,
		auth:        auth,
		uploader:    uploader,
	}
}

type RegisterInput struct {
	Email              string `json:"email" validate:"required,email"`
	Password           string `json:"password" validate:"required,min=8"`
	DisplayName        string `json:"display_name" validate:"required,min=2,max=50"`
	CertificationLevel string `json:"certification_level"`
	Bio                string `json:"bio" validate:"max=500"`
}

type UpdateProfileInput struct {
	DisplayName        string `json:"display_name" validate:"omitempty,min=2,max=50"`
	Bio                string `json:"bio" validate:"max=500"`
	CertificationLevel string `json:"certification_level"`
	DiveCount          *int   `json:"dive_count" validate:"omitempty,min=0"`
}

func (uc *ProfileUseCase) Register(ctx context.Context, input RegisterInput) (*entity.Profile, error) {
	uid, err := uc.auth.CreateUser(ctx, input.Email, input.Password, input.DisplayName)
	if err != nil {
		log.Printf("Register Error: Failed to create auth user for %s: %v", input.Email, err)
		return nil, errors.Internal("Failed to create user", err)
	}

	profile := &entity.Profile{
		ID:                 uid,
		Email:              input.Email,
		DisplayName:        input.DisplayName,
		Bio:                input.Bio,
		CertificationLevel: input.CertificationLevel,
		Role:               "member",
		BuddyList:          map[string]entity.BuddyEntry{},
	}

	if err := uc.profileRepo.Create(ctx, profile); err != nil {
		log.Printf("Register Error: Failed to create profile for %s: %v", uid, err)
		return nil, err
	}

	return profile, nil
}

func (uc *ProfileUseCase) GetProfile(ctx context.Context, userID string) (*entity.Profile, error) {
	return uc.profileRepo.GetByID(ctx, userID)
}

func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.Profile, error) {
	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != "" {
		profile.DisplayName = input.DisplayName
	}
	if input.Bio != "" {
		profile.Bio = input.Bio
	}
	if input.CertificationLevel != "" {
		profile.CertificationLevel = input.CertificationLevel
	}
	if input.DiveCount != nil {
		profile.DiveCount = *input.DiveCount
	}
	profile.UpdatedAt = time.Now()

	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		log.Printf("UpdateProfile Error: Failed to update profile %s: %v", userID, err)
		return nil, err
	}

	return profile, nil
}

func (uc *ProfileUseCase) UploadPhoto(ctx context.Context, userID string, file io.Reader, contentType string) (string, error) {
	if uc.uploader == nil {
		return "", errors.Internal("Photo storage is not configured", nil)
	}

	url, err := uc.uploader.UploadProfilePhoto(ctx, file, contentType)
	if err != nil {
		log.Printf("UploadPhoto Error: Failed to upload photo for %s: %v", userID, err)
		return "", errors.Internal("Failed to upload photo", err)
	}

	if err := uc.profileRepo.UpdatePhotoURL(ctx, userID, url); err != nil {
		return "", err
	}

	return url, nil
}
