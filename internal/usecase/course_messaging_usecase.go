package usecase

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"strings"
	"time"

	"divehub/internal/domain/entity"
	"divehub/internal/domain/repository"
	"divehub/pkg/errors"
)

// CourseMessagingUseCase specializes chat semantics for a course or trip:
// staff broadcast to all students unless addressing one of them, students can
// only message the instructor, and broadcasts aggregate read receipts.
type CourseMessagingUseCase struct {
	courseRepo  repository.CourseRepository
	profileRepo repository.ProfileRepository
	notifier    *NotificationUseCase
	publisher   RealtimePublisher
}

func NewCourseMessagingUseCase(
	courseRepo repository.CourseRepository,
	profileRepo repository.ProfileRepository,
	notifier *NotificationUseCase,
	publisher RealtimePublisher,
) *CourseMessagingUseCase {
	return &CourseMessagingUseCase{
		courseRepo:  courseRepo,
		profileRepo: profileRepo,
		notifier:    notifier,
		publisher:   publisher,
	}
}

type SendCourseMessageInput struct {
	CourseID    string
	Text        string
	RecipientID string
}

type ReadReceipt struct {
	MessageID       string   `json:"message_id"`
	ReadCount       int      `json:"read_count"`
	TotalRecipients int      `json:"total_recipients"`
	Percent         int      `json:"percent"`
	ReaderNames     []string `json:"reader_names"`
}

func (uc *CourseMessagingUseCase) SendCourseMessage(ctx context.Context, senderID string, input SendCourseMessageInput) (*entity.CourseMessage, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, errors.BadRequest("Message text is required", nil)
	}

	course, err := uc.courseRepo.GetByID(ctx, input.CourseID)
	if err != nil {
		return nil, err
	}

	if !course.IsMember(senderID) {
		return nil, errors.Forbidden("You are not a member of this course", nil)
	}

	messageType := entity.CourseMessageBroadcast
	recipientID := ""

	if course.IsStaff(senderID) {
		if input.RecipientID != "" {
			if !course.IsMember(input.RecipientID) {
				return nil, errors.BadRequest("Recipient is not a member of this course", nil)
			}
			messageType = entity.CourseMessageIndividual
			recipientID = input.RecipientID
		}
	} else {
		// Students cannot broadcast; their messages always go to the
		// instructor.
		if input.RecipientID != "" && input.RecipientID != course.InstructorID {
			return nil, errors.Forbidden("Students can only message the instructor", nil)
		}
		messageType = entity.CourseMessageIndividual
		recipientID = course.InstructorID
	}

	message := &entity.CourseMessage{
		CourseID:    course.ID,
		SenderID:    senderID,
		SenderName:  uc.resolveName(ctx, course, senderID),
		Text:        text,
		Type:        messageType,
		RecipientID: recipientID,
		ReadBy:      []string{},
	}

	if err := uc.courseRepo.AppendMessage(ctx, message); err != nil {
		log.Printf("SendCourseMessage Error: Failed to append message to course %s: %v", course.ID, err)
		return nil, err
	}

	uc.fanOutNotifications(ctx, course, message)

	payload, _ := json.Marshal(map[string]interface{}{
		"type":      "course_message",
		"course_id": course.ID,
		"message":   message,
		"timestamp": time.Now().Format(time.RFC3339),
	})
	if messageType == entity.CourseMessageBroadcast {
		for _, studentID := range course.StudentIDs {
			uc.publisher.SendToUser(studentID, payload)
		}
		uc.publisher.SendToUser(course.InstructorID, payload)
	} else {
		uc.publisher.SendToUser(recipientID, payload)
		uc.publisher.SendToUser(senderID, payload)
	}

	return message, nil
}

// fanOutNotifications is best-effort; partial delivery never rolls the
// message back.
func (uc *CourseMessagingUseCase) fanOutNotifications(ctx context.Context, course *entity.Course, message *entity.CourseMessage) {
	category := entity.CategoryTraining
	if course.Kind == entity.CourseKindTrip {
		category = entity.CategoryTravel
	}

	if message.Type == entity.CourseMessageBroadcast {
		var recipients []string
		for _, studentID := range course.StudentIDs {
			if studentID != message.SenderID {
				recipients = append(recipients, studentID)
			}
		}
		uc.notifier.NotifyBroadcast(ctx, NotifyInput{
			Type:         entity.NotificationCourseMessage,
			Category:     category,
			FromUserID:   message.SenderID,
			FromUserName: message.SenderName,
			SubjectRef:   course.ID,
			Preview:      message.Text,
		}, recipients)
		return
	}

	notificationType := entity.NotificationCourseMessage
	if course.IsStudent(message.SenderID) {
		// Student replies land in the instructor badge.
		notificationType = entity.NotificationCourseResponse
		category = entity.CategoryInstructor
	}

	err := uc.notifier.Notify(ctx, NotifyInput{
		Type:         notificationType,
		Category:     category,
		FromUserID:   message.SenderID,
		FromUserName: message.SenderName,
		ToUserID:     message.RecipientID,
		SubjectRef:   course.ID,
		Preview:      message.Text,
	})
	if err != nil {
		log.Printf("SendCourseMessage Warning: Failed to notify %s for course %s: %v", message.RecipientID, course.ID, err)
	}
}

// GetCourseMessages returns the feed newest-first with one total order,
// (createdAt, seq). Individual messages are visible only to their sender,
// their recipient and the instructor.
func (uc *CourseMessagingUseCase) GetCourseMessages(ctx context.Context, userID, courseID string, limit, offset int) ([]*entity.CourseMessage, int64, error) {
	course, err := uc.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, 0, err
	}

	if !course.IsMember(userID) {
		return nil, 0, errors.Forbidden("You are not a member of this course", nil)
	}

	all, _, err := uc.courseRepo.ListMessages(ctx, courseID, 0, 0)
	if err != nil {
		log.Printf("GetCourseMessages Error: Failed to list messages for course %s: %v", courseID, err)
		return nil, 0, err
	}

	var visible []*entity.CourseMessage
	for _, message := range all {
		if uc.messageVisibleTo(course, message, userID) {
			visible = append(visible, message)
		}
	}
	entity.SortCourseMessagesDescending(visible)

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

func (uc *CourseMessagingUseCase) messageVisibleTo(course *entity.Course, message *entity.CourseMessage, userID string) bool {
	if message.Type == entity.CourseMessageBroadcast {
		return true
	}
	return message.SenderID == userID ||
		message.RecipientID == userID ||
		course.InstructorID == userID
}

// MarkMessageRead adds the reader to the broadcast's readBy set. Idempotent.
func (uc *CourseMessagingUseCase) MarkMessageRead(ctx context.Context, userID, messageID string) error {
	message, err := uc.courseRepo.GetMessageByID(ctx, messageID)
	if err != nil {
		return err
	}

	course, err := uc.courseRepo.GetByID(ctx, message.CourseID)
	if err != nil {
		return err
	}
	if !course.IsMember(userID) {
		return errors.Forbidden("You are not a member of this course", nil)
	}
	if message.ReadByUser(userID) {
		return nil
	}

	return uc.courseRepo.MarkMessageRead(ctx, messageID, userID)
}

// GetReadReceipt aggregates who has read a broadcast. Names resolve against
// the course roster; a missing profile renders as "Unknown User" rather than
// failing the receipt.
func (uc *CourseMessagingUseCase) GetReadReceipt(ctx context.Context, userID, messageID string) (*ReadReceipt, error) {
	message, err := uc.courseRepo.GetMessageByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.Type != entity.CourseMessageBroadcast {
		return nil, errors.BadRequest("Read receipts exist only for broadcast messages", nil)
	}

	course, err := uc.courseRepo.GetByID(ctx, message.CourseID)
	if err != nil {
		return nil, err
	}
	if !course.IsStaff(userID) {
		return nil, errors.Forbidden("Only course staff can view read receipts", nil)
	}

	receipt := &ReadReceipt{
		MessageID:       messageID,
		TotalRecipients: len(course.StudentIDs),
		ReaderNames:     []string{},
	}

	for _, studentID := range course.StudentIDs {
		if !message.ReadByUser(studentID) {
			continue
		}
		receipt.ReadCount++
		receipt.ReaderNames = append(receipt.ReaderNames, uc.resolveName(ctx, course, studentID))
	}

	if receipt.TotalRecipients > 0 {
		receipt.Percent = int(math.Round(float64(receipt.ReadCount) / float64(receipt.TotalRecipients) * 100))
	}

	return receipt, nil
}

func (uc *CourseMessagingUseCase) ListCourses(ctx context.Context, userID string, limit, offset int) ([]*entity.Course, int64, error) {
	return uc.courseRepo.ListByMember(ctx, userID, limit, offset)
}

func (uc *CourseMessagingUseCase) resolveName(ctx context.Context, course *entity.Course, userID string) string {
	if !course.IsMember(userID) {
		return "Unknown User"
	}
	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil || profile.DisplayName == "" {
		return "Unknown User"
	}
	return profile.DisplayName
}
