package repository

import (
	"context"

	"divehub/internal/domain/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, int64, error)
	// ListUnread returns the full live unread set for userID; counters are
	// always recomputed from this set, never decremented.
	ListUnread(ctx context.Context, userID string) ([]*entity.Notification, error)
	// MarkRead flips read to true. Idempotent.
	MarkRead(ctx context.Context, id string) error
}
