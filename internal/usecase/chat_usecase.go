package usecase

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"divehub/internal/domain/entity"
	"divehub/internal/domain/repository"
	"divehub/pkg/errors"
)

// RealtimePublisher is the push side of the realtime channel. The WebSocket
// manager satisfies it.
type RealtimePublisher interface {
	SendToUser(userID string, message []byte)
	SendToChatRoom(chatID string, message []byte, excludeUserID string)
}

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	profileRepo repository.ProfileRepository
	notifier    *NotificationUseCase
	publisher   RealtimePublisher
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	profileRepo repository.ProfileRepository,
	notifier *NotificationUseCase,
	publisher RealtimePublisher,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		profileRepo: profileRepo,
		notifier:    notifier,
		publisher:   publisher,
	}
}

type CreateChatInput struct {
	MemberIDs []string
	IsGroup   bool
}

type SendMessageInput struct {
	ChatID string
	Text   string
}

func (uc *ChatUseCase) CreateChat(ctx context.Context, creatorID string, input CreateChatInput) (*entity.Chat, error) {
	members := dedupeMembers(creatorID, input.MemberIDs)
	if len(members) == 0 {
		return nil, errors.BadRequest("At least one member is required", nil)
	}
	if !input.IsGroup && len(members) != 1 {
		return nil, errors.BadRequest("A direct chat has exactly one other member", nil)
	}

	creator, err := uc.profileRepo.GetByID(ctx, creatorID)
	if err != nil {
		log.Printf("CreateChat Error: Creator %s not found: %v", creatorID, err)
		return nil, errors.NotFound("Creator profile", err)
	}

	// A direct chat between the same pair is reused instead of duplicated.
	if !input.IsGroup {
		if existing, err := uc.findExistingDirectChat(ctx, creatorID, members[0]); err == nil && existing != nil {
			return existing, nil
		} else if err != nil && !errors.Is(err, "NOT_FOUND") {
			return nil, err
		}
	}

	now := time.Now()
	participants := map[string]entity.Participant{
		creatorID: {JoinedAt: now, Active: true, DisplayName: creator.DisplayName},
	}
	active := []string{creatorID}

	for _, memberID := range members {
		member, err := uc.profileRepo.GetByID(ctx, memberID)
		if err != nil {
			log.Printf("CreateChat Error: Member %s not found: %v", memberID, err)
			return nil, errors.NotFound("Member profile", err)
		}
		participants[memberID] = entity.Participant{JoinedAt: now, Active: true, DisplayName: member.DisplayName}
		active = append(active, memberID)
	}

	chatType := entity.ChatTypeDirect
	if input.IsGroup {
		chatType = entity.ChatTypeGroup
	}

	chat := &entity.Chat{
		Type:               chatType,
		Participants:       participants,
		ActiveParticipants: active,
		CreatedBy:          creatorID,
	}

	if err := uc.chatRepo.Create(ctx, chat); err != nil {
		log.Printf("CreateChat Error: Failed to create chat: %v", err)
		return nil, err
	}

	return chat, nil
}

func (uc *ChatUseCase) SendMessage(ctx context.Context, userID string, input SendMessageInput) (*entity.Message, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, errors.BadRequest("Message text is required", nil)
	}

	chat, err := uc.chatRepo.GetByID(ctx, input.ChatID)
	if err != nil {
		log.Printf("SendMessage Error: Chat %s not found: %v", input.ChatID, err)
		return nil, err
	}

	if !chat.IsActiveParticipant(userID) {
		log.Printf("SendMessage Error: User %s is not an active participant in chat %s", userID, input.ChatID)
		return nil, errors.Forbidden("You are not an active participant in this chat", nil)
	}

	message := &entity.Message{
		ChatID:     input.ChatID,
		SenderID:   userID,
		SenderName: chat.Participants[userID].DisplayName,
		Text:       text,
		DeletedFor: []string{},
	}

	// Message write and chat metadata bump are one transaction; if the
	// message lands, the bump landed with it.
	if err := uc.chatRepo.AppendMessage(ctx, message, text); err != nil {
		log.Printf("SendMessage Error: Failed to append message to chat %s: %v", input.ChatID, err)
		return nil, err
	}

	// Notification fan-out is best-effort: a failure here never rolls back
	// the message.
	for _, participantID := range chat.ActiveParticipants {
		if participantID == userID {
			continue
		}
		err := uc.notifier.Notify(ctx, NotifyInput{
			Type:         entity.NotificationNewMessage,
			FromUserID:   userID,
			FromUserName: message.SenderName,
			ToUserID:     participantID,
			SubjectRef:   chat.ID,
			Preview:      text,
		})
		if err != nil {
			log.Printf("SendMessage Warning: Failed to notify %s for chat %s: %v", participantID, chat.ID, err)
		}
	}

	// The sender receives their own message through the same room broadcast
	// as everyone else; there is no local echo path.
	payload, _ := json.Marshal(map[string]interface{}{
		"type":    "new_message",
		"chat_id": chat.ID,
		"message": message,
	})
	uc.publisher.SendToChatRoom(chat.ID, payload, "")

	listUpdate, _ := json.Marshal(map[string]interface{}{
		"type":            "chat_list_update",
		"chat_id":         chat.ID,
		"last_message":    message.Text,
		"last_message_at": message.CreatedAt.Format(time.RFC3339),
		"sender_id":       userID,
		"sender_name":     message.SenderName,
	})
	for _, participantID := range chat.ActiveParticipants {
		if participantID != userID {
			uc.publisher.SendToUser(participantID, listUpdate)
		}
	}

	return message, nil
}

// GetChatMessages returns the thread ascending by (createdAt, seq), with
// messages the viewer soft-deleted filtered out before pagination.
func (uc *ChatUseCase) GetChatMessages(ctx context.Context, userID, chatID string, limit, offset int) ([]*entity.Message, int64, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, 0, err
	}

	if _, ok := chat.Participants[userID]; !ok {
		return nil, 0, errors.Forbidden("You are not a participant in this chat", nil)
	}

	all, _, err := uc.chatRepo.ListMessages(ctx, chatID, 0, 0)
	if err != nil {
		log.Printf("GetChatMessages Error: Failed to list messages for chat %s: %v", chatID, err)
		return nil, 0, err
	}

	var visible []*entity.Message
	for _, message := range all {
		if !message.DeletedForUser(userID) {
			visible = append(visible, message)
		}
	}
	entity.SortMessagesAscending(visible)

	total := int64(len(visible))
	start := offset
	if start > len(visible) {
		start = len(visible)
	}
	end := len(visible)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	return visible[start:end], total, nil
}

// DeleteMessage hides the message from the viewer only. Idempotent.
func (uc *ChatUseCase) DeleteMessage(ctx context.Context, userID, chatID, messageID string) error {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return err
	}

	if _, ok := chat.Participants[userID]; !ok {
		return errors.Forbidden("You are not a participant in this chat", nil)
	}

	return uc.chatRepo.MarkMessageDeleted(ctx, chatID, messageID, userID)
}

// DeleteChat ends the chat for the viewer: they go inactive and every message
// is marked deleted for them, in one batch. Other participants keep the chat
// and its full history.
func (uc *ChatUseCase) DeleteChat(ctx context.Context, userID, chatID string) error {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return err
	}

	if _, ok := chat.Participants[userID]; !ok {
		return errors.Forbidden("You are not a participant in this chat", nil)
	}

	return uc.chatRepo.DeactivateParticipant(ctx, chatID, userID, true)
}

// LeaveChat removes the viewer from a group chat without touching anyone's
// message history.
func (uc *ChatUseCase) LeaveChat(ctx context.Context, userID, chatID string) error {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return err
	}

	if chat.Type != entity.ChatTypeGroup {
		return errors.BadRequest("Only group chats can be left; delete the chat instead", nil)
	}
	if !chat.IsActiveParticipant(userID) {
		return errors.Forbidden("You are not an active participant in this chat", nil)
	}
	if chat.ActiveCount() <= 1 {
		return errors.Conflict("The last active participant cannot leave the chat")
	}

	return uc.chatRepo.DeactivateParticipant(ctx, chatID, userID, false)
}

func (uc *ChatUseCase) GetUserChats(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error) {
	return uc.chatRepo.ListByParticipant(ctx, userID, limit, offset)
}

func (uc *ChatUseCase) GetChatByID(ctx context.Context, userID, chatID string) (*entity.Chat, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if _, ok := chat.Participants[userID]; !ok {
		return nil, errors.Forbidden("You are not a participant in this chat", nil)
	}

	return chat, nil
}

func (uc *ChatUseCase) findExistingDirectChat(ctx context.Context, userA, userB string) (*entity.Chat, error) {
	chats, _, err := uc.chatRepo.ListByParticipant(ctx, userA, 0, 0)
	if err != nil {
		return nil, errors.Internal("Failed to list chats for user", err)
	}

	for _, chat := range chats {
		if chat.Type != entity.ChatTypeDirect {
			continue
		}
		if chat.IsActiveParticipant(userA) && chat.IsActiveParticipant(userB) {
			return chat, nil
		}
	}

	return nil, errors.NotFound("Existing direct chat", nil)
}

func dedupeMembers(creatorID string, memberIDs []string) []string {
	seen := map[string]bool{creatorID: true}
	var members []string
	for _, id := range memberIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, id)
	}
	return members
}
