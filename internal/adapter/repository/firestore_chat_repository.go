package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"divehub/internal/domain/entity"
	"divehub/internal/domain/repository"
	"divehub/pkg/errors"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}

	chat.CreatedAt = time.Now()
	if chat.LastMessageAt.IsZero() {
		chat.LastMessageAt = chat.CreatedAt
	}

	_, err := r.client.Collection("chats").Doc(chat.ID).Set(ctx, chat)
	if err != nil {
		return errors.Internal("Failed to create chat", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	doc, err := r.client.Collection("chats").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat", nil)
		}
		return nil, errors.Internal("Failed to get chat", err)
	}

	var chat entity.Chat
	if err := doc.DataTo(&chat); err != nil {
		return nil, errors.Internal("Failed to parse chat data", err)
	}

	return &chat, nil
}

func (r *firestoreChatRepository) ListByParticipant(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error) {
	query := r.client.Collection("chats").
		Where("activeParticipants", "array-contains", userID).
		OrderBy("lastMessageAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching chats for user %s: %v", userID, err)
		return nil, 0, errors.Internal("Failed to fetch chats", err)
	}

	total := int64(len(allDocs))

	// Paginate in memory; the full result set was already fetched for the count.
	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var chats []*entity.Chat
	for i := start; i < end; i++ {
		var chat entity.Chat
		if err := allDocs[i].DataTo(&chat); err != nil {
			log.Printf("Error parsing chat data for user %s: %v", userID, err)
			continue
		}
		chats = append(chats, &chat)
	}

	return chats, total, nil
}

// AppendMessage writes the message and the chat metadata bump in one
// transaction. The chat's messageSeq assigns the per-chat tie-break sequence.
func (r *firestoreChatRepository) AppendMessage(ctx context.Context, message *entity.Message, preview string) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	chatRef := r.client.Collection("chats").Doc(message.ChatID)
	msgRef := chatRef.Collection("content").Doc(message.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(chatRef)
		if err != nil {
			return err
		}

		var chat entity.Chat
		if err := doc.DataTo(&chat); err != nil {
			return err
		}

		message.Seq = chat.MessageSeq + 1
		message.CreatedAt = time.Now()

		if err := tx.Set(msgRef, message); err != nil {
			return err
		}
		return tx.Update(chatRef, []firestore.Update{
			{Path: "lastMessage", Value: preview},
			{Path: "lastMessageAt", Value: message.CreatedAt},
			{Path: "messageSeq", Value: message.Seq},
		})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Chat", err)
		}
		return errors.Internal("Failed to append message", err)
	}

	return nil
}

func (r *firestoreChatRepository) ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.client.Collection("chats").Doc(chatID).Collection("content").
		OrderBy("createdAt", firestore.Asc).
		OrderBy("seq", firestore.Asc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching messages for chat %s: %v", chatID, err)
		return nil, 0, errors.Internal("Failed to fetch messages", err)
	}

	total := int64(len(allDocs))

	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var messages []*entity.Message
	for i := start; i < end; i++ {
		var message entity.Message
		if err := allDocs[i].DataTo(&message); err != nil {
			log.Printf("Error parsing message data for chat %s: %v", chatID, err)
			continue
		}
		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *firestoreChatRepository) MarkMessageDeleted(ctx context.Context, chatID, messageID, userID string) error {
	msgRef := r.client.Collection("chats").Doc(chatID).Collection("content").Doc(messageID)

	// ArrayUnion is a set add, so a repeated delete is a no-op.
	_, err := msgRef.Update(ctx, []firestore.Update{
		{Path: "deletedFor", Value: firestore.ArrayUnion(userID)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Message", nil)
		}
		return errors.Internal("Failed to delete message", err)
	}

	return nil
}

// DeactivateParticipant removes userID from the active set and, for a full
// delete, marks every message in the chat deleted for them. Everything goes
// into a single batch so the chat can never be observed half-deactivated.
func (r *firestoreChatRepository) DeactivateParticipant(ctx context.Context, chatID, userID string, purgeMessages bool) error {
	chatRef := r.client.Collection("chats").Doc(chatID)

	batch := r.client.Batch()
	batch.Update(chatRef, []firestore.Update{
		{FieldPath: firestore.FieldPath{"participants", userID, "active"}, Value: false},
		{Path: "activeParticipants", Value: firestore.ArrayRemove(userID)},
	})

	if purgeMessages {
		iter := chatRef.Collection("content").Documents(ctx)
		defer iter.Stop()
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return errors.Internal("Failed to iterate messages for delete", err)
			}
			batch.Update(doc.Ref, []firestore.Update{
				{Path: "deletedFor", Value: firestore.ArrayUnion(userID)},
			})
		}
	}

	if _, err := batch.Commit(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Chat", err)
		}
		return errors.Internal("Failed to deactivate participant", err)
	}

	return nil
}
