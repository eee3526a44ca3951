package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"divehub/internal/domain/entity"
	"divehub/internal/domain/repository"
	"divehub/pkg/errors"
)

type firestoreCourseRepository struct {
	client *firestore.Client
}

func NewFirestoreCourseRepository(client *firestore.Client) repository.CourseRepository {
	return &firestoreCourseRepository{
		client: client,
	}
}

func (r *firestoreCourseRepository) Create(ctx context.Context, course *entity.Course) error {
	if course.ID == "" {
		course.ID = uuid.New().String()
	}
	course.CreatedAt = time.Now()

	_, err := r.client.Collection("courses").Doc(course.ID).Set(ctx, course)
	if err != nil {
		return errors.Internal("Failed to create course", err)
	}

	return nil
}

func (r *firestoreCourseRepository) GetByID(ctx context.Context, id string) (*entity.Course, error) {
	doc, err := r.client.Collection("courses").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Course", nil)
		}
		return nil, errors.Internal("Failed to get course", err)
	}

	var course entity.Course
	if err := doc.DataTo(&course); err != nil {
		return nil, errors.Internal("Failed to parse course data", err)
	}

	return &course, nil
}

func (r *firestoreCourseRepository) ListByMember(ctx context.Context, userID string, limit, offset int) ([]*entity.Course, int64, error) {
	// Students are the common case; instructor and assistant listings come
	// through the same merged set.
	queries := []firestore.Query{
		r.client.Collection("courses").Where("studentIds", "array-contains", userID),
		r.client.Collection("courses").Where("instructorId", "==", userID),
		r.client.Collection("courses").Where("assistantIds", "array-contains", userID),
	}

	seen := make(map[string]bool)
	var courses []*entity.Course
	for _, query := range queries {
		docs, err := query.Documents(ctx).GetAll()
		if err != nil {
			log.Printf("Firestore error while fetching courses for user %s: %v", userID, err)
			return nil, 0, errors.Internal("Failed to fetch courses", err)
		}
		for _, doc := range docs {
			if seen[doc.Ref.ID] {
				continue
			}
			seen[doc.Ref.ID] = true

			var course entity.Course
			if err := doc.DataTo(&course); err != nil {
				log.Printf("Error parsing course data %s: %v", doc.Ref.ID, err)
				continue
			}
			courses = append(courses, &course)
		}
	}

	total := int64(len(courses))

	start := offset
	if start > len(courses) {
		start = len(courses)
	}
	end := len(courses)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	return courses[start:end], total, nil
}

func (r *firestoreCourseRepository) AppendMessage(ctx context.Context, message *entity.CourseMessage) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	courseRef := r.client.Collection("courses").Doc(message.CourseID)
	msgRef := r.client.Collection("courseMessages").Doc(message.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(courseRef)
		if err != nil {
			return err
		}

		var course entity.Course
		if err := doc.DataTo(&course); err != nil {
			return err
		}

		message.Seq = course.MessageSeq + 1
		message.CreatedAt = time.Now()

		if err := tx.Set(msgRef, message); err != nil {
			return err
		}
		return tx.Update(courseRef, []firestore.Update{
			{Path: "messageSeq", Value: message.Seq},
		})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Course", err)
		}
		return errors.Internal("Failed to append course message", err)
	}

	return nil
}

func (r *firestoreCourseRepository) ListMessages(ctx context.Context, courseID string, limit, offset int) ([]*entity.CourseMessage, int64, error) {
	// (createdAt, seq) descending is the one total order for course feeds;
	// the in-memory comparator in entity agrees with this query.
	query := r.client.Collection("courseMessages").
		Where("courseId", "==", courseID).
		OrderBy("createdAt", firestore.Desc).
		OrderBy("seq", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching messages for course %s: %v", courseID, err)
		return nil, 0, errors.Internal("Failed to fetch course messages", err)
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

	var messages []*entity.CourseMessage
	for i := start; i < end; i++ {
		var message entity.CourseMessage
		if err := allDocs[i].DataTo(&message); err != nil {
			log.Printf("Error parsing course message for course %s: %v", courseID, err)
			continue
		}
		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *firestoreCourseRepository) GetMessageByID(ctx context.Context, messageID string) (*entity.CourseMessage, error) {
	doc, err := r.client.Collection("courseMessages").Doc(messageID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Course message", nil)
		}
		return nil, errors.Internal("Failed to get course message", err)
	}

	var message entity.CourseMessage
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse course message", err)
	}

	return &message, nil
}

func (r *firestoreCourseRepository) MarkMessageRead(ctx context.Context, messageID, userID string) error {
	_, err := r.client.Collection("courseMessages").Doc(messageID).Update(ctx, []firestore.Update{
		{Path: "readBy", Value: firestore.ArrayUnion(userID)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Course message", nil)
		}
		return errors.Internal("Failed to mark course message read", err)
	}

	return nil
}
