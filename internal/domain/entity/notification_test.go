package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultCategoryMapper(t *testing.T) {
	cases := []struct {
		name string
		n    *Notification
		want string
	}{
		{"new message", &Notification{Type: NotificationNewMessage}, CategoryMessages},
		{"buddy request", &Notification{Type: NotificationBuddyRequest}, CategoryBuddies},
		{"buddy accepted", &Notification{Type: NotificationBuddyRequestAccepted}, CategoryBuddies},
		{"course message", &Notification{Type: NotificationCourseMessage}, CategoryTraining},
		{"course response", &Notification{Type: NotificationCourseResponse}, CategoryInstructor},
		{"producer override wins", &Notification{Type: NotificationCourseMessage, Category: CategoryTravel}, CategoryTravel},
		{"unknown type falls back", &Notification{Type: "something_new"}, CategoryMessages},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DefaultCategoryMapper(tc.n))
		})
	}
}

func TestCountUnreadSkipsReadNotifications(t *testing.T) {
	notifications := []*Notification{
		{Type: NotificationNewMessage},
		{Type: NotificationNewMessage, Read: true},
		{Type: NotificationBuddyRequest},
		{Type: NotificationCourseMessage, Category: CategoryTravel},
	}

	counts := CountUnread(notifications, DefaultCategoryMapper)

	assert.Equal(t, 1, counts.Messages)
	assert.Equal(t, 1, counts.Buddies)
	assert.Equal(t, 1, counts.Travel)
	assert.Equal(t, 3, counts.Total)
}

func TestCountUnreadEmptySetIsZero(t *testing.T) {
	counts := CountUnread(nil, nil)
	assert.Equal(t, UnreadCounts{}, counts)
}
