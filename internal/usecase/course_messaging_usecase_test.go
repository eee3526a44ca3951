package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"divehub/internal/domain/entity"
	"divehub/pkg/errors"
)

type courseFixture struct {
	courseRepo  *fakeCourseRepo
	profileRepo *fakeProfileRepo
	notifRepo   *fakeNotificationRepo
	publisher   *fakePublisher
	uc          *CourseMessagingUseCase
}

func newCourseFixture(t *testing.T, kind string) *courseFixture {
	t.Helper()
	f := &courseFixture{
		courseRepo:  newFakeCourseRepo(),
		profileRepo: newFakeProfileRepo(),
		notifRepo:   newFakeNotificationRepo(),
		publisher:   newFakePublisher(),
	}
	notifier := NewNotificationUseCase(f.notifRepo, f.publisher)
	f.uc = NewCourseMessagingUseCase(f.courseRepo, f.profileRepo, notifier, f.publisher)

	ctx := context.Background()
	for _, id := range []string{"i1", "as1", "s1", "s2", "s3"} {
		require.NoError(t, f.profileRepo.Create(ctx, &entity.Profile{
			ID:          id,
			Email:       id + "@divehub.test",
			DisplayName: "Diver " + id,
		}))
	}
	require.NoError(t, f.courseRepo.Create(ctx, &entity.Course{
		ID:           "course-1",
		Title:        "Open Water",
		Kind:         kind,
		InstructorID: "i1",
		AssistantIDs: []string{"as1"},
		StudentIDs:   []string{"s1", "s2", "s3"},
	}))
	return f
}

func TestStaffBroadcastReachesAllStudents(t *testing.T) {
	f := newCourseFixture(t, entity.CourseKindCourse)
	ctx := context.Background()

	message, err := f.uc.SendCourseMessage(ctx, "i1", SendCourseMessageInput{
		CourseID: "course-1",
		Text:     "bring your logbooks tomorrow",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.CourseMessageBroadcast, message.Type)
	assert.Empty(t, message.RecipientID)

	for _, studentID := range []string{"s1", "s2", "s3"} {
		docs := f.notifRepo.byRecipient(studentID)
		require.Len(t, docs, 1, "student %s", studentID)
		assert.Equal(t, entity.NotificationCourseMessage, docs[0].Type)
		assert.Equal(t, entity.CategoryTraining, docs[0].Category)
	}

	// Every member sees a broadcast in the feed.
	for _, memberID := range []string{"i1", "as1", "s1", "s2", "s3"} {
		messages, _, err := f.uc.GetCourseMessages(ctx, memberID, "course-1", 50, 0)
		require.NoError(t, err)
		assert.Len(t, messages, 1, "member %s", memberID)
	}
}

func TestTripBroadcastCountsUnderTravel(t *testing.T) {
	f := newCourseFixture(t, entity.CourseKindTrip)

	_, err := f.uc.SendCourseMessage(context.Background(), "i1", SendCourseMessageInput{
		CourseID: "course-1",
		Text:     "ferry leaves at 07:30 sharp",
	})
	require.NoError(t, err)

	docs := f.notifRepo.byRecipient("s1")
	require.Len(t, docs, 1)
	assert.Equal(t, entity.CategoryTravel, docs[0].Category)

	counts := entity.CountUnread(docs, entity.DefaultCategoryMapper)
	assert.Equal(t, 1, counts.Travel)
	assert.Equal(t, 0, counts.Training)
}

func TestStudentMessagesGoToTheInstructor(t *testing.T) {
	f := newCourseFixture(t, entity.CourseKindCourse)
	ctx := context.Background()

	message, err := f.uc.SendCourseMessage(ctx, "s1", SendCourseMessageInput{
		CourseID: "course-1",
		Text:     "can I move to the afternoon group?",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.CourseMessageIndividual, message.Type)
	assert.Equal(t, "i1", message.RecipientID)

	docs := f.notifRepo.byRecipient("i1")
	require.Len(t, docs, 1)
	assert.Equal(t, entity.NotificationCourseResponse, docs[0].Type)
	assert.Equal(t, entity.CategoryInstructor, docs[0].Category)

	// Individual messages stay between sender, recipient and instructor.
	visible, _, err := f.uc.GetCourseMessages(ctx, "s1", "course-1", 50, 0)
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	hidden, _, err := f.uc.GetCourseMessages(ctx, "s2", "course-1", 50, 0)
	require.NoError(t, err)
	assert.Empty(t, hidden)
}

func TestCourseMessagePermissions(t *testing.T) {
	f := newCourseFixture(t, entity.CourseKindCourse)
	ctx := context.Background()

	_, err := f.uc.SendCourseMessage(ctx, "outsider", SendCourseMessageInput{CourseID: "course-1", Text: "hi"})
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	// Students cannot address other students.
	_, err = f.uc.SendCourseMessage(ctx, "s1", SendCourseMessageInput{
		CourseID:    "course-1",
		Text:        "psst",
		RecipientID: "s2",
	})
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, _, err = f.uc.GetCourseMessages(ctx, "outsider", "course-1", 50, 0)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestReadReceiptAggregation(t *testing.T) {
	f := newCourseFixture(t, entity.CourseKindCourse)
	ctx := context.Background()

	message, err := f.uc.SendCourseMessage(ctx, "i1", SendCourseMessageInput{
		CourseID: "course-1",
		Text:     "surface interval is 60 minutes",
	})
	require.NoError(t, err)

	require.NoError(t, f.uc.MarkMessageRead(ctx, "s1", message.ID))
	require.NoError(t, f.uc.MarkMessageRead(ctx, "s1", message.ID)) // idempotent

	receipt, err := f.uc.GetReadReceipt(ctx, "i1", message.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, receipt.ReadCount)
	assert.Equal(t, 3, receipt.TotalRecipients)
	assert.Equal(t, 33, receipt.Percent)
	assert.Equal(t, []string{"Diver s1"}, receipt.ReaderNames)

	// Assistants are staff too.
	_, err = f.uc.GetReadReceipt(ctx, "as1", message.ID)
	require.NoError(t, err)

	// Students are not.
	_, err = f.uc.GetReadReceipt(ctx, "s1", message.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestReadReceiptOnlyForBroadcasts(t *testing.T) {
	f := newCourseFixture(t, entity.CourseKindCourse)
	ctx := context.Background()

	message, err := f.uc.SendCourseMessage(ctx, "s1", SendCourseMessageInput{
		CourseID: "course-1",
		Text:     "question about buoyancy",
	})
	require.NoError(t, err)

	_, err = f.uc.GetReadReceipt(ctx, "i1", message.ID)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}
