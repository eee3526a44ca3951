package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"divehub/internal/domain/entity"
	"divehub/pkg/errors"
)

// In-memory repository fakes. They honor the same contracts the Firestore
// implementations do (atomic dual writes, idempotent set mutations,
// transaction-scoped seq assignment) so the usecases can be exercised
// without a live store.

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*entity.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*entity.Profile)}
}

func (r *fakeProfileRepo) Create(ctx context.Context, profile *entity.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile.BuddyList == nil {
		profile.BuddyList = make(map[string]entity.BuddyEntry)
	}
	profile.CreatedAt = time.Now()
	r.profiles[profile.ID] = profile
	return nil
}

func (r *fakeProfileRepo) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[id]
	if !ok {
		return nil, errors.NotFound("Profile", nil)
	}
	return profile, nil
}

func (r *fakeProfileRepo) Update(ctx context.Context, profile *entity.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[profile.ID]; !ok {
		return errors.NotFound("Profile", nil)
	}
	r.profiles[profile.ID] = profile
	return nil
}

func (r *fakeProfileRepo) UpdatePhotoURL(ctx context.Context, id, photoURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[id]
	if !ok {
		return errors.NotFound("Profile", nil)
	}
	profile.PhotoURL = photoURL
	return nil
}

func (r *fakeProfileRepo) List(ctx context.Context, limit int) ([]*entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var profiles []*entity.Profile
	for _, profile := range r.profiles {
		profiles = append(profiles, profile)
		if limit > 0 && len(profiles) >= limit {
			break
		}
	}
	return profiles, nil
}

func (r *fakeProfileRepo) SetBuddyEntries(ctx context.Context, userA string, entryA *entity.BuddyEntry, userB string, entryB *entity.BuddyEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.profiles[userA]
	if !ok {
		return errors.NotFound("Profile", nil)
	}
	b, ok := r.profiles[userB]
	if !ok {
		return errors.NotFound("Profile", nil)
	}
	a.BuddyList[userB] = *entryA
	b.BuddyList[userA] = *entryB
	return nil
}

func (r *fakeProfileRepo) DeleteBuddyEntries(ctx context.Context, userA, userB string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.profiles[userA]; ok {
		delete(a.BuddyList, userB)
	}
	if b, ok := r.profiles[userB]; ok {
		delete(b.BuddyList, userA)
	}
	return nil
}

type fakeChatRepo struct {
	mu       sync.Mutex
	chats    map[string]*entity.Chat
	messages map[string][]*entity.Message
	nextID   int
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		chats:    make(map[string]*entity.Chat),
		messages: make(map[string][]*entity.Message),
	}
}

func (r *fakeChatRepo) Create(ctx context.Context, chat *entity.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	chat.ID = fmt.Sprintf("chat-%d", r.nextID)
	chat.CreatedAt = time.Now()
	r.chats[chat.ID] = chat
	return nil
}

func (r *fakeChatRepo) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[id]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	return chat, nil
}

func (r *fakeChatRepo) ListByParticipant(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var chats []*entity.Chat
	for _, chat := range r.chats {
		if chat.IsActiveParticipant(userID) {
			chats = append(chats, chat)
		}
	}
	total := int64(len(chats))
	if offset > len(chats) {
		offset = len(chats)
	}
	chats = chats[offset:]
	if limit > 0 && limit < len(chats) {
		chats = chats[:limit]
	}
	return chats, total, nil
}

func (r *fakeChatRepo) AppendMessage(ctx context.Context, message *entity.Message, preview string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[message.ChatID]
	if !ok {
		return errors.NotFound("Chat", nil)
	}
	chat.MessageSeq++
	message.Seq = chat.MessageSeq
	message.ID = fmt.Sprintf("msg-%s-%d", chat.ID, message.Seq)
	message.CreatedAt = time.Now()
	chat.LastMessage = preview
	chat.LastMessageAt = message.CreatedAt
	r.messages[chat.ID] = append(r.messages[chat.ID], message)
	return nil
}

func (r *fakeChatRepo) ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	messages := append([]*entity.Message(nil), r.messages[chatID]...)
	total := int64(len(messages))
	if offset > len(messages) {
		offset = len(messages)
	}
	messages = messages[offset:]
	if limit > 0 && limit < len(messages) {
		messages = messages[:limit]
	}
	return messages, total, nil
}

func (r *fakeChatRepo) MarkMessageDeleted(ctx context.Context, chatID, messageID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, message := range r.messages[chatID] {
		if message.ID != messageID {
			continue
		}
		if !message.DeletedForUser(userID) {
			message.DeletedFor = append(message.DeletedFor, userID)
		}
		return nil
	}
	return errors.NotFound("Message", nil)
}

func (r *fakeChatRepo) DeactivateParticipant(ctx context.Context, chatID, userID string, purgeMessages bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[chatID]
	if !ok {
		return errors.NotFound("Chat", nil)
	}
	participant, ok := chat.Participants[userID]
	if !ok {
		return errors.NotFound("Participant", nil)
	}
	participant.Active = false
	chat.Participants[userID] = participant
	var active []string
	for _, id := range chat.ActiveParticipants {
		if id != userID {
			active = append(active, id)
		}
	}
	chat.ActiveParticipants = active
	if purgeMessages {
		for _, message := range r.messages[chatID] {
			if !message.DeletedForUser(userID) {
				message.DeletedFor = append(message.DeletedFor, userID)
			}
		}
	}
	return nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*entity.Notification
	nextID        int
	failFor       map[string]bool // recipients whose writes should fail
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{failFor: make(map[string]bool)}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor[notification.ToUserID] {
		return errors.Internal("store unavailable", nil)
	}
	r.nextID++
	notification.ID = fmt.Sprintf("notif-%d", r.nextID)
	notification.Read = false
	notification.CreatedAt = time.Now()
	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *fakeNotificationRepo) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, notification := range r.notifications {
		if notification.ID == id {
			return notification, nil
		}
	}
	return nil, errors.NotFound("Notification", nil)
}

func (r *fakeNotificationRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		if r.notifications[i].ToUserID == userID {
			result = append(result, r.notifications[i])
		}
	}
	total := int64(len(result))
	if offset > len(result) {
		offset = len(result)
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, total, nil
}

func (r *fakeNotificationRepo) ListUnread(ctx context.Context, userID string) ([]*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var unread []*entity.Notification
	for _, notification := range r.notifications {
		if notification.ToUserID == userID && !notification.Read {
			unread = append(unread, notification)
		}
	}
	return unread, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, notification := range r.notifications {
		if notification.ID == id {
			notification.Read = true
			return nil
		}
	}
	return errors.NotFound("Notification", nil)
}

func (r *fakeNotificationRepo) byRecipient(userID string) []*entity.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Notification
	for _, notification := range r.notifications {
		if notification.ToUserID == userID {
			result = append(result, notification)
		}
	}
	return result
}

type fakeCourseRepo struct {
	mu       sync.Mutex
	courses  map[string]*entity.Course
	messages []*entity.CourseMessage
	nextID   int
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: make(map[string]*entity.Course)}
}

func (r *fakeCourseRepo) Create(ctx context.Context, course *entity.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if course.ID == "" {
		r.nextID++
		course.ID = fmt.Sprintf("course-%d", r.nextID)
	}
	course.CreatedAt = time.Now()
	r.courses[course.ID] = course
	return nil
}

func (r *fakeCourseRepo) GetByID(ctx context.Context, id string) (*entity.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	course, ok := r.courses[id]
	if !ok {
		return nil, errors.NotFound("Course", nil)
	}
	return course, nil
}

func (r *fakeCourseRepo) ListByMember(ctx context.Context, userID string, limit, offset int) ([]*entity.Course, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var courses []*entity.Course
	for _, course := range r.courses {
		if course.IsMember(userID) {
			courses = append(courses, course)
		}
	}
	total := int64(len(courses))
	if offset > len(courses) {
		offset = len(courses)
	}
	courses = courses[offset:]
	if limit > 0 && limit < len(courses) {
		courses = courses[:limit]
	}
	return courses, total, nil
}

func (r *fakeCourseRepo) AppendMessage(ctx context.Context, message *entity.CourseMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	course, ok := r.courses[message.CourseID]
	if !ok {
		return errors.NotFound("Course", nil)
	}
	course.MessageSeq++
	message.Seq = course.MessageSeq
	message.ID = fmt.Sprintf("cmsg-%s-%d", course.ID, message.Seq)
	message.CreatedAt = time.Now()
	r.messages = append(r.messages, message)
	return nil
}

func (r *fakeCourseRepo) ListMessages(ctx context.Context, courseID string, limit, offset int) ([]*entity.CourseMessage, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var messages []*entity.CourseMessage
	for _, message := range r.messages {
		if message.CourseID == courseID {
			messages = append(messages, message)
		}
	}
	total := int64(len(messages))
	if offset > len(messages) {
		offset = len(messages)
	}
	messages = messages[offset:]
	if limit > 0 && limit < len(messages) {
		messages = messages[:limit]
	}
	return messages, total, nil
}

func (r *fakeCourseRepo) GetMessageByID(ctx context.Context, messageID string) (*entity.CourseMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, message := range r.messages {
		if message.ID == messageID {
			return message, nil
		}
	}
	return nil, errors.NotFound("Course message", nil)
}

func (r *fakeCourseRepo) MarkMessageRead(ctx context.Context, messageID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, message := range r.messages {
		if message.ID != messageID {
			continue
		}
		if !message.ReadByUser(userID) {
			message.ReadBy = append(message.ReadBy, userID)
		}
		return nil
	}
	return errors.NotFound("Course message", nil)
}

// fakePublisher records realtime pushes per user and per chat room.
type fakePublisher struct {
	mu           sync.Mutex
	userMessages map[string][][]byte
	roomMessages map[string][][]byte
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{
		userMessages: make(map[string][][]byte),
		roomMessages: make(map[string][][]byte),
	}
}

func (p *fakePublisher) SendToUser(userID string, message []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.userMessages[userID] = append(p.userMessages[userID], message)
}

func (p *fakePublisher) SendToChatRoom(chatID string, message []byte, excludeUserID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.roomMessages[chatID] = append(p.roomMessages[chatID], message)
}

func (p *fakePublisher) sentToUser(userID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.userMessages[userID])
}

func (p *fakePublisher) sentToRoom(chatID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.roomMessages[chatID])
}
