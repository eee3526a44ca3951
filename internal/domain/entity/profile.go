package entity

import "time"

// Buddy relationship status values, mirrored on both profiles.
const (
	BuddyStatusPending  = "pending"
	BuddyStatusAccepted = "accepted"
	BuddyStatusRejected = "rejected"
)

type Profile struct {
	ID                 string                `json:"id" firestore:"id"`
	Email              string                `json:"email" firestore:"email"`
	DisplayName        string                `json:"display_name" firestore:"displayName"`
	Bio                string                `json:"bio,omitempty" firestore:"bio,omitempty"`
	PhotoURL           string                `json:"photo_url,omitempty" firestore:"photoURL,omitempty"`
	CertificationLevel string                `json:"certification_level,omitempty" firestore:"certificationLevel,omitempty"`
	DiveCount          int                   `json:"dive_count" firestore:"diveCount"`
	Points             int                   `json:"points" firestore:"points"`
	Role               string                `json:"role" firestore:"role"` // "member", "instructor", "admin"
	BuddyList          map[string]BuddyEntry `json:"buddy_list" firestore:"buddyList"`
	CreatedAt          time.Time             `json:"created_at" firestore:"createdAt"`
	UpdatedAt          time.Time             `json:"updated_at" firestore:"updatedAt"`
}

// BuddyEntry is one side of the mirrored buddy edge. Both sides are always
// written in a single transaction so the pair can never be observed asymmetric.
type BuddyEntry struct {
	Status      string    `json:"status" firestore:"status"`
	Initiator   bool      `json:"initiator" firestore:"initiator"`
	DisplayName string    `json:"display_name" firestore:"displayName"` // point-in-time snapshot, no freshness guarantee
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}

// BuddyPairValid reports whether the two sides of an edge are in one of the
// legal complementary states: both pending with exactly one initiator, both
// accepted, or both absent.
func BuddyPairValid(a, b *BuddyEntry) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Status != b.Status {
		return false
	}
	if a.Status == BuddyStatusPending {
		return a.Initiator != b.Initiator
	}
	return a.Status == BuddyStatusAccepted
}
