package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthProvider struct {
	nextUID int
}

func (a *fakeAuthProvider) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	a.nextUID++
	return fmt.Sprintf("uid-%d", a.nextUID), nil
}

func (a *fakeAuthProvider) VerifyToken(ctx context.Context, token string) (string, error) {
	return strings.TrimPrefix(token, "token-"), nil
}

type fakeUploader struct {
	uploads int
}

func (u *fakeUploader) UploadProfilePhoto(ctx context.Context, file io.Reader, contentType string) (string, error) {
	u.uploads++
	return fmt.Sprintf("https://storage.example.com/photo-%d.jpg", u.uploads), nil
}

func TestRegisterCreatesAuthUserAndProfile(t *testing.T) {
	profileRepo := newFakeProfileRepo()
	uc := NewProfileUseCase(profileRepo, &fakeAuthProvider{}, &fakeUploader{})

	profile, err := uc.Register(context.Background(), RegisterInput{
		Email:              "nina@divehub.test",
		Password:           "correct-horse",
		DisplayName:        "Nina",
		CertificationLevel: "Rescue Diver",
	})
	require.NoError(t, err)
	assert.Equal(t, "uid-1", profile.ID)
	assert.Equal(t, "member", profile.Role)
	assert.NotNil(t, profile.BuddyList)

	stored, err := profileRepo.GetByID(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "Nina", stored.DisplayName)
}

func TestUploadPhotoStoresURLOnProfile(t *testing.T) {
	profileRepo := newFakeProfileRepo()
	uploader := &fakeUploader{}
	uc := NewProfileUseCase(profileRepo, &fakeAuthProvider{}, uploader)

	_, err := uc.Register(context.Background(), RegisterInput{
		Email:       "nina@divehub.test",
		Password:    "correct-horse",
		DisplayName: "Nina",
	})
	require.NoError(t, err)

	url, err := uc.UploadPhoto(context.Background(), "uid-1", strings.NewReader("jpegbytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, 1, uploader.uploads)

	profile, err := uc.GetProfile(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, url, profile.PhotoURL)
}

func TestUpdateProfileAppliesOnlyProvidedFields(t *testing.T) {
	profileRepo := newFakeProfileRepo()
	uc := NewProfileUseCase(profileRepo, &fakeAuthProvider{}, &fakeUploader{})

	_, err := uc.Register(context.Background(), RegisterInput{
		Email:       "nina@divehub.test",
		Password:    "correct-horse",
		DisplayName: "Nina",
		Bio:         "Wreck diving mostly",
	})
	require.NoError(t, err)

	dives := 42
	updated, err := uc.UpdateProfile(context.Background(), "uid-1", UpdateProfileInput{
		CertificationLevel: "Divemaster",
		DiveCount:          &dives,
	})
	require.NoError(t, err)
	assert.Equal(t, "Nina", updated.DisplayName)
	assert.Equal(t, "Wreck diving mostly", updated.Bio)
	assert.Equal(t, "Divemaster", updated.CertificationLevel)
	assert.Equal(t, 42, updated.DiveCount)
}
