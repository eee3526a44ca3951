package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"divehub/internal/domain/entity"
	"divehub/internal/domain/repository"
	"divehub/pkg/errors"
)

type firestoreProfileRepository struct {
	client *firestore.Client
}

func NewFirestoreProfileRepository(client *firestore.Client) repository.ProfileRepository {
	return &firestoreProfileRepository{
		client: client,
	}
}

func (r *firestoreProfileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	if profile.BuddyList == nil {
		profile.BuddyList = make(map[string]entity.BuddyEntry)
	}

	_, err := r.client.Collection("profiles").Doc(profile.ID).Set(ctx, profile)
	if err != nil {
		return errors.Internal("Failed to create profile", err)
	}

	return nil
}

func (r *firestoreProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	doc, err := r.client.Collection("profiles").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Profile", nil)
		}
		return nil, errors.Internal("Failed to get profile", err)
	}

	var profile entity.Profile
	if err := doc.DataTo(&profile); err != nil {
		return nil, errors.Internal("Failed to parse profile data", err)
	}

	return &profile, nil
}

func (r *firestoreProfileRepository) Update(ctx context.Context, profile *entity.Profile) error {
	updates := []firestore.Update{
		{Path: "updatedAt", Value: time.Now()},
	}
	if profile.DisplayName != "" {
		updates = append(updates, firestore.Update{Path: "displayName", Value: profile.DisplayName})
	}
	if profile.Bio != "" {
		updates = append(updates, firestore.Update{Path: "bio", Value: profile.Bio})
	}
	if profile.CertificationLevel != "" {
		updates = append(updates, firestore.Update{Path: "certificationLevel", Value: profile.CertificationLevel})
	}
	if profile.DiveCount > 0 {
		updates = append(updates, firestore.Update{Path: "diveCount", Value: profile.DiveCount})
	}

	_, err := r.client.Collection("profiles").Doc(profile.ID).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Profile", nil)
		}
		return errors.Internal("Failed to update profile", err)
	}

	return nil
}

func (r *firestoreProfileRepository) UpdatePhotoURL(ctx context.Context, id, photoURL string) error {
	_, err := r.client.Collection("profiles").Doc(id).Update(ctx, []firestore.Update{
		{Path: "photoURL", Value: photoURL},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errors.Internal("Failed to update profile photo", err)
	}

	return nil
}

func (r *firestoreProfileRepository) List(ctx context.Context, limit int) ([]*entity.Profile, error) {
	// The store has no substring search; callers filter in memory against
	// this explicitly bounded set.
	query := r.client.Collection("profiles").OrderBy("displayName", firestore.Asc).Limit(limit)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to list profiles", err)
	}

	var profiles []*entity.Profile
	for _, doc := range docs {
		var profile entity.Profile
		if err := doc.DataTo(&profile); err != nil {
			log.Printf("Error parsing profile data %s: %v", doc.Ref.ID, err)
			continue
		}
		profiles = append(profiles, &profile)
	}

	return profiles, nil
}

// SetBuddyEntries writes both sides of the edge in one transaction. A partial
// write would leave the relationship asymmetric, which readers treat as
// corruption, so the two updates must land together or not at all.
func (r *firestoreProfileRepository) SetBuddyEntries(ctx context.Context, userA string, entryA *entity.BuddyEntry, userB string, entryB *entity.BuddyEntry) error {
	refA := r.client.Collection("profiles").Doc(userA)
	refB := r.client.Collection("profiles").Doc(userB)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(refA); err != nil {
			return err
		}
		if _, err := tx.Get(refB); err != nil {
			return err
		}

		if err := tx.Update(refA, []firestore.Update{
			{FieldPath: firestore.FieldPath{"buddyList", userB}, Value: entryA},
		}); err != nil {
			return err
		}
		return tx.Update(refB, []firestore.Update{
			{FieldPath: firestore.FieldPath{"buddyList", userA}, Value: entryB},
		})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Profile", err)
		}
		return errors.Internal("Failed to write buddy entries", err)
	}

	return nil
}

func (r *firestoreProfileRepository) DeleteBuddyEntries(ctx context.Context, userA, userB string) error {
	refA := r.client.Collection("profiles").Doc(userA)
	refB := r.client.Collection("profiles").Doc(userB)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Update(refA, []firestore.Update{
			{FieldPath: firestore.FieldPath{"buddyList", userB}, Value: firestore.Delete},
		}); err != nil {
			return err
		}
		return tx.Update(refB, []firestore.Update{
			{FieldPath: firestore.FieldPath{"buddyList", userA}, Value: firestore.Delete},
		})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Profile", err)
		}
		return errors.Internal("Failed to remove buddy entries", err)
	}

	return nil
}
