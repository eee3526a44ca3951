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

// ThreadWatcher maintains live message-thread subscriptions. Each change to
// a chat's content sub-collection re-emits the full thread, filtered to what
// the viewer may see; the viewer's own sends arrive through this same path
// rather than any local echo.
type ThreadWatcher struct {
	client    *firestore.Client
	publisher Publisher

	mutex   sync.Mutex
	cancels map[string]context.CancelFunc // keyed by chatID + viewerID
}

func NewThreadWatcher(client *firestore.Client, publisher Publisher) *ThreadWatcher {
	return &ThreadWatcher{
		client:    client,
		publisher: publisher,
		cancels:   make(map[string]context.CancelFunc),
	}
}

func watchKey(chatID, viewerID string) string {
	return chatID + "/" + viewerID
}

func (w *ThreadWatcher) Watch(ctx context.Context, chatID, viewerID string) {
	key := watchKey(chatID, viewerID)

	w.mutex.Lock()
	if _, ok := w.cancels[key]; ok {
		w.mutex.Unlock()
		return
	}
	watchCtx, cancel := context.WithCancel(ctx)
	w.cancels[key] = cancel
	w.mutex.Unlock()

	go w.run(watchCtx, chatID, viewerID)
}

func (w *ThreadWatcher) Unwatch(chatID, viewerID string) {
	key := watchKey(chatID, viewerID)

	w.mutex.Lock()
	defer w.mutex.Unlock()
	if cancel, ok := w.cancels[key]; ok {
		cancel()
		delete(w.cancels, key)
	}
}

func (w *ThreadWatcher) run(ctx context.Context, chatID, viewerID string) {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		err := w.stream(ctx, chatID, viewerID)
		if ctx.Err() != nil {
			return
		}

		logger.Warn("ThreadWatcher: stream for chat %s viewer %s ended: %v, retrying in %v", chatID, viewerID, err, backoff)
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

func (w *ThreadWatcher) stream(ctx context.Context, chatID, viewerID string) error {
	query := w.client.Collection("chats").Doc(chatID).Collection("content").
		OrderBy("createdAt", firestore.Asc).
		OrderBy("seq", firestore.Asc)

	snapshots := query.Snapshots(ctx)
	defer snapshots.Stop()

	for {
		snap, err := snapshots.Next()
		if err != nil {
			return err
		}

		var visible []*entity.Message
		docs := snap.Documents
		for {
			doc, err := docs.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return err
			}

			var message entity.Message
			if err := doc.DataTo(&message); err != nil {
				logger.Warn("ThreadWatcher: bad message doc %s: %v", doc.Ref.ID, err)
				continue
			}
			if message.DeletedForUser(viewerID) {
				continue
			}
			visible = append(visible, &message)
		}

		payload, err := json.Marshal(map[string]interface{}{
			"type":      "thread_snapshot",
			"chat_id":   chatID,
			"messages":  visible,
			"timestamp": time.Now().Format(time.RFC3339),
		})
		if err != nil {
			logger.Error("ThreadWatcher: marshal error for chat %s: %v", chatID, err)
			continue
		}

		w.publisher.SendToUser(viewerID, payload)
	}
}
