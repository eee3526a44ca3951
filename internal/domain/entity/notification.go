package entity

import "time"

// Notification types.
const (
	NotificationBuddyRequest         = "buddy_request"
	NotificationBuddyRequestAccepted = "buddy_request_accepted"
	NotificationNewMessage           = "new_message"
	NotificationCourseMessage        = "course_message"
	NotificationCourseResponse       = "course_response"
)

// Badge categories for the unread counters.
const (
	CategoryMessages   = "messages"
	CategoryBuddies    = "buddies"
	CategoryTraining   = "training"
	CategoryTravel     = "travel"
	CategoryInstructor = "instructor"
)

// Notification is a fire-and-forget fan-out record read by exactly one
// recipient. Broadcast events produce one document per recipient so that
// read state stays independent.
type Notification struct {
	ID           string    `json:"id" firestore:"id"`
	Type         string    `json:"type" firestore:"type"`
	Category     string    `json:"category,omitempty" firestore:"category,omitempty"` // producer override, e.g. trip broadcasts count under travel
	FromUserID   string    `json:"from_user_id" firestore:"fromUserId"`
	FromUserName string    `json:"from_user_name" firestore:"fromUserName"`
	ToUserID     string    `json:"to_user_id" firestore:"toUserId"`
	SubjectRef   string    `json:"subject_ref" firestore:"subjectRef"` // chat, message or course id
	Preview      string    `json:"preview,omitempty" firestore:"preview,omitempty"`
	Read         bool      `json:"read" firestore:"read"`
	CreatedAt    time.Time `json:"created_at" firestore:"createdAt"`
}

// CategoryMapper assigns a notification to a badge category.
type CategoryMapper func(n *Notification) string

// DefaultCategoryMapper prefers the producer-assigned category and falls back
// to a mapping by type.
func DefaultCategoryMapper(n *Notification) string {
	if n.Category != "" {
		return n.Category
	}
	switch n.Type {
	case NotificationNewMessage:
		return CategoryMessages
	case NotificationBuddyRequest, NotificationBuddyRequestAccepted:
		return CategoryBuddies
	case NotificationCourseMessage:
		return CategoryTraining
	case NotificationCourseResponse:
		return CategoryInstructor
	}
	return CategoryMessages
}

// UnreadCounts holds the per-category badge counts. It is always derived by
// counting the live unread set, never by incremental decrements, so counts
// cannot go negative.
type UnreadCounts struct {
	Messages   int `json:"messages"`
	Buddies    int `json:"buddies"`
	Training   int `json:"training"`
	Travel     int `json:"travel"`
	Instructor int `json:"instructor"`
	Total      int `json:"total"`
}

// CountUnread aggregates unread notifications into badge counts using mapper.
// Already-read notifications are skipped so callers may pass a mixed set.
func CountUnread(notifications []*Notification, mapper CategoryMapper) UnreadCounts {
	if mapper == nil {
		mapper = DefaultCategoryMapper
	}

	var counts UnreadCounts
	for _, n := range notifications {
		if n.Read {
			continue
		}
		switch mapper(n) {
		case CategoryMessages:
			counts.Messages++
		case CategoryBuddies:
			counts.Buddies++
		case CategoryTraining:
			counts.Training++
		case CategoryTravel:
			counts.Travel++
		case CategoryInstructor:
			counts.Instructor++
		default:
			counts.Messages++
		}
		counts.Total++
	}
	return counts
}
