package repository

import (
	"context"

	"divehub/internal/domain/entity"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	GetByID(ctx context.Context, id string) (*entity.Chat, error)
	// ListByParticipant returns chats where userID is an active participant,
	// newest activity first.
	ListByParticipant(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error)

	// AppendMessage writes the message and bumps the chat's LastMessageAt and
	// MessageSeq in one atomic transaction; the assigned seq and timestamp are
	// filled into message.
	AppendMessage(ctx context.Context, message *entity.Message, preview string) error
	ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, int64, error)
	// MarkMessageDeleted adds userID to the message's deleted-for set.
	// Idempotent: repeating the call is a no-op.
	MarkMessageDeleted(ctx context.Context, chatID, messageID, userID string) error

	// DeactivateParticipant flips the participant inactive, removes them from
	// activeParticipants and, when purgeMessages is set, marks every message
	// in the chat deleted for them. All writes land in one atomic batch.
	DeactivateParticipant(ctx context.Context, chatID, userID string, purgeMessages bool) error
}
