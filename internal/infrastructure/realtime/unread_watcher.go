package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"divehub/internal/domain/entity"
	"divehub/pkg/logger"
)

// Publisher is the push side of the realtime channel.
type Publisher interface {
	SendToUser(userID string, message []byte)
}

// UnreadWatcher keeps one live Firestore query per watched user
// (toUser == uid AND read == false) and republishes the full per-category
// counts on every change. Counts are always recomputed from the current
// unread result set, so they cannot go negative no matter how mark-read
// calls interleave across sessions.
type UnreadWatcher struct {
	client    *firestore.Client
	publisher Publisher
	mapper    entity.CategoryMapper

	mutex   sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewUnreadWatcher(client *firestore.Client, publisher Publisher, mapper entity.CategoryMapper) *UnreadWatcher {
	if mapper == nil {
		mapper = entity.DefaultCategoryMapper
	}
	return &UnreadWatcher{
		client:    client,
		publisher: publisher,
		mapper:    mapper,
		cancels:   make(map[string]context.CancelFunc),
	}
}

// Watch starts a live subscription for userID. A second call for the same
// user is a no-op; the existing subscription keeps running.
func (w *UnreadWatcher) Watch(ctx context.Context, userID string) {
	w.mutex.Lock()
	if _, ok := w.cancels[userID]; ok {
		w.mutex.Unlock()
		return
	}
	watchCtx, cancel := context.WithCancel(ctx)
	w.cancels[userID] = cancel
	w.mutex.Unlock()

	go w.run(watchCtx, userID)
}

// Unwatch tears down the subscription for userID.
func (w *UnreadWatcher) Unwatch(userID string) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if cancel, ok := w.cancels[userID]; ok {
		cancel()
		delete(w.cancels, userID)
	}
}

func (w *UnreadWatcher) run(ctx context.Context, userID string) {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		err := w.stream(ctx, userID)
		if ctx.Err() != nil {
			return
		}

		// Subscriptions are idempotent reads, so a bounded retry with
		// backoff is safe here.
		logger.Warn("UnreadWatcher: stream for %s ended: %v, retrying in %v", userID, err, backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}

func (w *UnreadWatcher) stream(ctx context.Context, userID string) error {
	query := w.client.Collection("notifications").
		Where("toUserId", "==", userID).
		Where("read", "==", false)

	snapshots := query.Snapshots(ctx)
	defer snapshots.Stop()

	for {
		snap, err := snapshots.Next()
		if err != nil {
			return err
		}

		var unread []*entity.Notification
		docs := snap.Documents
		for {
			doc, err := docs.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return err
			}

			var notification entity.Notification
			if err := doc.DataTo(&notification); err != nil {
				logger.Warn("UnreadWatcher: bad notification doc %s: %v", doc.Ref.ID, err)
				continue
			}
			unread = append(unread, &notification)
		}

		w.publish(userID, entity.CountUnread(unread, w.mapper))
	}
}

func (w *UnreadWatcher) publish(userID string, counts entity.UnreadCounts) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":      "unread_counters",
		"counters":  counts,
		"timestamp": time.Now().Format(time.RFC3339),
	})
	if err != nil {
		logger.Error("UnreadWatcher: marshal error for %s: %v", userID, err)
		return
	}

	w.publisher.SendToUser(userID, payload)
}
