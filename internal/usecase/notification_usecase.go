package usecase

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"divehub/internal/domain/entity"
	"divehub/internal/domain/repository"
	"divehub/pkg/errors"
)

type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
	publisher        RealtimePublisher
}

func NewNotificationUseCase(
	notificationRepo repository.NotificationRepository,
	publisher RealtimePublisher,
) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

type NotifyInput struct {
	Type         string
	Category     string
	FromUserID   string
	FromUserName string
	ToUserID     string
	SubjectRef   string
	Preview      string
}

// Notify appends one unread notification document for a single recipient.
// Callers treat failures as best-effort: the triggering operation has already
// committed and is never rolled back.
func (uc *NotificationUseCase) Notify(ctx context.Context, input NotifyInput) error {
	notification := &entity.Notification{
		Type:         input.Type,
		Category:     input.Category,
		FromUserID:   input.FromUserID,
		FromUserName: input.FromUserName,
		ToUserID:     input.ToUserID,
		SubjectRef:   input.SubjectRef,
		Preview:      input.Preview,
	}

	if err := uc.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"type":         "notification",
		"notification": notification,
		"timestamp":    time.Now().Format(time.RFC3339),
	})
	uc.publisher.SendToUser(input.ToUserID, payload)

	return nil
}

// NotifyBroadcast fans out one independent document per recipient so each
// read state stays independent. There is no atomicity across recipients:
// partial delivery is accepted and the returned count says how many landed.
func (uc *NotificationUseCase) NotifyBroadcast(ctx context.Context, input NotifyInput, toUserIDs []string) int {
	delivered := 0
	for _, toUserID := range toUserIDs {
		perRecipient := input
		perRecipient.ToUserID = toUserID
		if err := uc.Notify(ctx, perRecipient); err != nil {
			log.Printf("NotifyBroadcast Warning: Failed to notify %s: %v", toUserID, err)
			continue
		}
		delivered++
	}
	return delivered
}

// MarkRead flips a notification to read. Idempotent; only the recipient may
// acknowledge it.
func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID, notificationID string) error {
	notification, err := uc.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}

	if notification.ToUserID != userID {
		return errors.Forbidden("You cannot acknowledge another user's notification", nil)
	}
	if notification.Read {
		return nil
	}

	return uc.notificationRepo.MarkRead(ctx, notificationID)
}

// UnreadCounts recomputes the per-category badge counts from the live unread
// set. Counting a result set cannot go negative, regardless of how mark-read
// calls race across sessions.
func (uc *NotificationUseCase) UnreadCounts(ctx context.Context, userID string) (entity.UnreadCounts, error) {
	unread, err := uc.notificationRepo.ListUnread(ctx, userID)
	if err != nil {
		return entity.UnreadCounts{}, err
	}

	return entity.CountUnread(unread, entity.DefaultCategoryMapper), nil
}

func (uc *NotificationUseCase) ListNotifications(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, int64, error) {
	return uc.notificationRepo.ListByUser(ctx, userID, limit, offset)
}
