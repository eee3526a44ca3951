package entity

import (
	"sort"
	"time"
)

const (
	CourseKindCourse = "course"
	CourseKindTrip   = "trip"
)

const (
	CourseMessageIndividual = "individual"
	CourseMessageBroadcast  = "broadcast"
)

type Course struct {
	ID           string    `json:"id" firestore:"id"`
	Title        string    `json:"title" firestore:"title"`
	Kind         string    `json:"kind" firestore:"kind"`
	InstructorID string    `json:"instructor_id" firestore:"instructorId"`
	AssistantIDs []string  `json:"assistant_ids" firestore:"assistantIds"`
	StudentIDs   []string  `json:"student_ids" firestore:"studentIds"`
	Location     string    `json:"location,omitempty" firestore:"location,omitempty"`
	StartsAt     time.Time `json:"starts_at" firestore:"startsAt"`
	CreatedAt    time.Time `json:"created_at" firestore:"createdAt"`
	MessageSeq   int64     `json:"message_seq" firestore:"messageSeq"`
}

// IsMember reports whether userID is the instructor, an assistant or an
// enrolled student.
func (c *Course) IsMember(userID string) bool {
	if userID == c.InstructorID {
		return true
	}
	for _, id := range c.AssistantIDs {
		if id == userID {
			return true
		}
	}
	return c.IsStudent(userID)
}

func (c *Course) IsStudent(userID string) bool {
	for _, id := range c.StudentIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsStaff reports whether userID may broadcast and view read receipts.
func (c *Course) IsStaff(userID string) bool {
	if userID == c.InstructorID {
		return true
	}
	for _, id := range c.AssistantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// CourseMessage lives in the top-level courseMessages collection, keyed by
// courseId. Broadcast messages track ReadBy for receipt aggregation.
type CourseMessage struct {
	ID          string    `json:"id" firestore:"id"`
	CourseID    string    `json:"course_id" firestore:"courseId"`
	SenderID    string    `json:"sender_id" firestore:"senderId"`
	SenderName  string    `json:"sender_name" firestore:"senderName"`
	Text        string    `json:"text" firestore:"text"`
	Type        string    `json:"type" firestore:"type"`
	RecipientID string    `json:"recipient_id,omitempty" firestore:"recipientId,omitempty"`
	ReadBy      []string  `json:"read_by" firestore:"readBy"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	Seq         int64     `json:"seq" firestore:"seq"`
}

func (m *CourseMessage) ReadByUser(userID string) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

// CompareCourseMessages is the single total order for course feeds:
// (CreatedAt, Seq). The feed displays newest-first, so callers sort with
// this comparator inverted exactly once; it is never re-derived elsewhere.
func CompareCourseMessages(a, b *CourseMessage) int {
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

// SortCourseMessagesDescending orders a course feed newest-first.
func SortCourseMessagesDescending(messages []*CourseMessage) {
	sort.SliceStable(messages, func(i, j int) bool {
		return CompareCourseMessages(messages[i], messages[j]) > 0
	})
}
