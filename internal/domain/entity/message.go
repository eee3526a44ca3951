package entity

import (
	"sort"
	"time"
)

// Message is an immutable content unit inside a chat. The only fields that
// ever change after creation are DeletedFor (per-viewer soft delete) appends.
type Message struct {
	ID         string    `json:"id" firestore:"id"`
	ChatID     string    `json:"chat_id" firestore:"chatId"`
	SenderID   string    `json:"sender_id" firestore:"senderId"`
	SenderName string    `json:"sender_name" firestore:"senderName"` // snapshot at send time
	Text       string    `json:"text" firestore:"text"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
	Seq        int64     `json:"seq" firestore:"seq"`
	DeletedFor []string  `json:"deleted_for" firestore:"deletedFor"`
}

// DeletedForUser reports whether the viewer has soft-deleted this message.
func (m *Message) DeletedForUser(userID string) bool {
	for _, id := range m.DeletedFor {
		if id == userID {
			return true
		}
	}
	return false
}

// CompareMessages is the single total order for chat messages:
// (CreatedAt, Seq) ascending. Seq breaks timestamp ties so the order stays
// stable under coarse server timestamp granularity.
func CompareMessages(a, b *Message) int {
	if a.CreatedAt.Before(b.CreatedAt) {
		return -1
	}
	if a.CreatedAt.After(b.CreatedAt) {
		return 1
	}
	switch {
	case a.Seq < b.Seq:
		return -1
	case a.Seq > b.Seq:
		return 1
	}
	return 0
}

// SortMessagesAscending orders messages oldest-first for thread display.
func SortMessagesAscending(messages []*Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return CompareMessages(messages[i], messages[j]) < 0
	})
}
