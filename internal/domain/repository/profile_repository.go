package repository

import (
	"context"

	"divehub/internal/domain/entity"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *entity.Profile) error
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	Update(ctx context.Context, profile *entity.Profile) error
	UpdatePhotoURL(ctx context.Context, id, photoURL string) error
	// List returns up to limit profiles; search filtering happens in the
	// usecase because the store has no substring queries.
	List(ctx context.Context, limit int) ([]*entity.Profile, error)

	// SetBuddyEntries writes both sides of the buddy edge in one atomic
	// transaction so the pair can never be observed asymmetric.
	SetBuddyEntries(ctx context.Context, userA string, entryA *entity.BuddyEntry, userB string, entryB *entity.BuddyEntry) error
	// DeleteBuddyEntries removes both sides atomically, returning the pair
	// to the unrelated state. Deleting an absent entry is not an error.
	DeleteBuddyEntries(ctx context.Context, userA, userB string) error
}
