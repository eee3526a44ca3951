package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"divehub/internal/domain/entity"
	"divehub/pkg/errors"
)

type chatFixture struct {
	chatRepo    *fakeChatRepo
	profileRepo *fakeProfileRepo
	notifRepo   *fakeNotificationRepo
	publisher   *fakePublisher
	uc          *ChatUseCase
}

func newChatFixture(t *testing.T, userIDs ...string) *chatFixture {
	t.Helper()
	f := &chatFixture{
		chatRepo:    newFakeChatRepo(),
		profileRepo: newFakeProfileRepo(),
		notifRepo:   newFakeNotificationRepo(),
		publisher:   newFakePublisher(),
	}
	notifier := NewNotificationUseCase(f.notifRepo, f.publisher)
	f.uc = NewChatUseCase(f.chatRepo, f.profileRepo, notifier, f.publisher)

	for _, id := range userIDs {
		require.NoError(t, f.profileRepo.Create(context.Background(), &entity.Profile{
			ID:          id,
			Email:       id + "@divehub.test",
			DisplayName: "Diver " + id,
		}))
	}
	return f
}

func TestCreateDirectChatAndSendMessage(t *testing.T) {
	f := newChatFixture(t, "a1", "b1")
	ctx := context.Background()

	chat, err := f.uc.CreateChat(ctx, "a1", CreateChatInput{MemberIDs: []string{"b1"}})
	require.NoError(t, err)
	assert.Equal(t, entity.ChatTypeDirect, chat.Type)
	assert.Len(t, chat.Participants, 2)
	assert.True(t, chat.IsActiveParticipant("a1"))
	assert.True(t, chat.IsActiveParticipant("b1"))

	message, err := f.uc.SendMessage(ctx, "a1", SendMessageInput{ChatID: chat.ID, Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), message.Seq)
	assert.Equal(t, "Diver a1", message.SenderName)

	// The recipient sees the message through the normal read path.
	messages, total, err := f.uc.GetChatMessages(ctx, "b1", chat.ID, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "hello", messages[0].Text)

	// One unread notification landed for the recipient, none for the sender.
	toB := f.notifRepo.byRecipient("b1")
	require.Len(t, toB, 1)
	assert.Equal(t, entity.NotificationNewMessage, toB[0].Type)
	assert.False(t, toB[0].Read)
	assert.Empty(t, f.notifRepo.byRecipient("a1"))

	// The message went out on the room broadcast, not a local echo.
	assert.Equal(t, 1, f.publisher.sentToRoom(chat.ID))
}

func TestCreateDirectChatReusesExistingPair(t *testing.T) {
	f := newChatFixture(t, "a1", "b1")
	ctx := context.Background()

	first, err := f.uc.CreateChat(ctx, "a1", CreateChatInput{MemberIDs: []string{"b1"}})
	require.NoError(t, err)

	second, err := f.uc.CreateChat(ctx, "b1", CreateChatInput{MemberIDs: []string{"a1"}})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCreateChatValidation(t *testing.T) {
	f := newChatFixture(t, "a1", "b1", "c1")
	ctx := context.Background()

	_, err := f.uc.CreateChat(ctx, "a1", CreateChatInput{})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	// Direct chats have exactly one other member.
	_, err = f.uc.CreateChat(ctx, "a1", CreateChatInput{MemberIDs: []string{"b1", "c1"}})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	// The creator's own ID does not count as another member.
	_, err = f.uc.CreateChat(ctx, "a1", CreateChatInput{MemberIDs: []string{"a1"}})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestSendMessageRejectsOutsidersAndEmptyText(t *testing.T) {
	f := newChatFixture(t, "a1", "b1", "c1")
	ctx := context.Background()

	chat, err := f.uc.CreateChat(ctx, "a1", CreateChatInput{MemberIDs: []string{"b1"}})
	require.NoError(t, err)

	_, err = f.uc.SendMessage(ctx, "c1", SendMessageInput{ChatID: chat.ID, Text: "hi"})
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, err = f.uc.SendMessage(ctx, "a1", SendMessageInput{ChatID: chat.ID, Text: "   "})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestDeleteMessageHidesForViewerOnly(t *testing.T) {
	f := newChatFixture(t, "a1", "b1")
	ctx := context.Background()

	chat, err := f.uc.CreateChat(ctx, "a1", CreateChatInput{MemberIDs: []string{"b1"}})
	require.NoError(t, err)
	message, err := f.uc.SendMessage(ctx, "a1", SendMessageInput{ChatID: chat.ID, Text: "hello"})
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteMessage(ctx, "a1", chat.ID, message.ID))
	// Repeating the delete is a no-op, not an error.
	require.NoError(t, f.uc.DeleteMessage(ctx, "a1", chat.ID, message.ID))

	mine, total, err := f.uc.GetChatMessages(ctx, "a1", chat.ID, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, mine)
	assert.Equal(t, int64(0), total)

	theirs, _, err := f.uc.GetChatMessages(ctx, "b1", chat.ID, 50, 0)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
	assert.Len(t, theirs[0].DeletedFor, 1)
}

func TestDeleteChatEndsItForOneSideOnly(t *testing.T) {
	f := newChatFixture(t, "a1", "b1")
	ctx := context.Background()

	chat, err := f.uc.CreateChat(ctx, "a1", CreateChatInput{MemberIDs: []string{"b1"}})
	require.NoError(t, err)
	_, err = f.uc.SendMessage(ctx, "a1", SendMessageInput{ChatID: chat.ID, Text: "hello"})
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteChat(ctx, "a1", chat.ID))

	// The deleter no longer lists the chat and sees no history.
	chats, _, err := f.uc.GetUserChats(ctx, "a1", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, chats)

	mine, _, err := f.uc.GetChatMessages(ctx, "a1", chat.ID, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, mine)

	// The other side keeps the chat and the full history.
	theirs, _, err := f.uc.GetChatMessages(ctx, "b1", chat.ID, 50, 0)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestLeaveChatRules(t *testing.T) {
	f := newChatFixture(t, "a1", "b1", "c1")
	ctx := context.Background()

	direct, err := f.uc.CreateChat(ctx, "a1", CreateChatInput{MemberIDs: []string{"b1"}})
	require.NoError(t, err)
	assert.True(t, errors.Is(f.uc.LeaveChat(ctx, "a1", direct.ID), "BAD_REQUEST"))

	group, err := f.uc.CreateChat(ctx, "a1", CreateChatInput{MemberIDs: []string{"b1", "c1"}, IsGroup: true})
	require.NoError(t, err)
	_, err = f.uc.SendMessage(ctx, "a1", SendMessageInput{ChatID: group.ID, Text: "dive briefing at 9"})
	require.NoError(t, err)

	require.NoError(t, f.uc.LeaveChat(ctx, "b1", group.ID))

	// Leaving keeps the history visible, unlike deleting.
	theirs, _, err := f.uc.GetChatMessages(ctx, "b1", group.ID, 50, 0)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)

	// A former member cannot post.
	_, err = f.uc.SendMessage(ctx, "b1", SendMessageInput{ChatID: group.ID, Text: "wait"})
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	require.NoError(t, f.uc.LeaveChat(ctx, "c1", group.ID))
	// The last active participant cannot leave.
	assert.True(t, errors.Is(f.uc.LeaveChat(ctx, "a1", group.ID), "CONFLICT"))
}
