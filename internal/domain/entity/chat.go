package entity

import "time"

const (
	ChatTypeDirect = "direct"
	ChatTypeGroup  = "group"
)

type Chat struct {
	ID           string                 `json:"id" firestore:"id"`
	Type         string                 `json:"type" firestore:"type"`
	Participants map[string]Participant `json:"participants" firestore:"participants"`
	// ActiveParticipants is denormalized from Participants for array-contains
	// queries. It must always equal the set of participants with Active == true.
	ActiveParticipants []string  `json:"active_participants" firestore:"activeParticipants"`
	CreatedBy          string    `json:"created_by" firestore:"createdBy"`
	CreatedAt          time.Time `json:"created_at" firestore:"createdAt"`
	LastMessage        string    `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageAt      time.Time `json:"last_message_at" firestore:"lastMessageAt"`
	// MessageSeq is bumped in the same transaction as every message write and
	// gives each message a per-chat monotonic sequence number.
	MessageSeq int64 `json:"message_seq" firestore:"messageSeq"`
}

type Participant struct {
	JoinedAt    time.Time `json:"joined_at" firestore:"joinedAt"`
	Active      bool      `json:"active" firestore:"active"`
	DisplayName string    `json:"display_name" firestore:"displayName"` // snapshot at join time
}

// IsActiveParticipant reports whether userID is currently an active member.
func (c *Chat) IsActiveParticipant(userID string) bool {
	p, ok := c.Participants[userID]
	return ok && p.Active
}

// ActiveCount returns the number of participants with Active == true.
func (c *Chat) ActiveCount() int {
	n := 0
	for _, p := range c.Participants {
		if p.Active {
			n++
		}
	}
	return n
}
