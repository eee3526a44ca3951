package repository

import (
	"context"

	"divehub/internal/domain/entity"
)

type CourseRepository interface {
	Create(ctx context.Context, course *entity.Course) error
	GetByID(ctx context.Context, id string) (*entity.Course, error)
	ListByMember(ctx context.Context, userID string, limit, offset int) ([]*entity.Course, int64, error)

	// AppendMessage writes the course message and bumps the course's
	// MessageSeq in one atomic transaction.
	AppendMessage(ctx context.Context, message *entity.CourseMessage) error
	ListMessages(ctx context.Context, courseID string, limit, offset int) ([]*entity.CourseMessage, int64, error)
	GetMessageByID(ctx context.Context, messageID string) (*entity.CourseMessage, error)
	// MarkMessageRead adds userID to the readBy set. Idempotent.
	MarkMessageRead(ctx context.Context, messageID, userID string) error
}
