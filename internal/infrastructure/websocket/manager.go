package websocket

import (
	"context"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one authenticated WebSocket connection.
type Client struct {
	UserID         string
	Conn           *websocket.Conn
	Send           chan []byte
	ActiveChatRoom string
}

// Manager tracks live connections per user and per chat room. It is the push
// side of the realtime channel: every state change a subscriber should see is
// re-broadcast through here, including the sender's own messages (there is no
// local echo path).
type Manager struct {
	clients    map[string]*Client
	chatRooms  map[string]map[string]bool // chatID -> set of userIDs
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex

	// Lifecycle hooks, invoked outside the mutex. Used to start and stop
	// the per-user snapshot watchers.
	OnConnect    func(userID string)
	OnDisconnect func(userID string)
	OnJoinRoom   func(chatID, userID string)
	OnLeaveRoom  func(chatID, userID string)
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		chatRooms:  make(map[string]map[string]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Start runs the registration loop until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.UserID] = client
				m.mutex.Unlock()
				log.Printf("WebSocket: client registered: %s", client.UserID)
				if m.OnConnect != nil {
					m.OnConnect(client.UserID)
				}

			case client := <-m.Unregister:
				m.mutex.Lock()
				if _, ok := m.clients[client.UserID]; ok {
					delete(m.clients, client.UserID)
					close(client.Send)
				}
				for _, members := range m.chatRooms {
					delete(members, client.UserID)
				}
				m.mutex.Unlock()
				log.Printf("WebSocket: client unregistered: %s", client.UserID)
				if m.OnLeaveRoom != nil && client.ActiveChatRoom != "" {
					m.OnLeaveRoom(client.ActiveChatRoom, client.UserID)
				}
				if m.OnDisconnect != nil {
					m.OnDisconnect(client.UserID)
				}

			case <-ctx.Done():
				return
			}
		}
	}()
}

// SendToUser pushes a payload to one user's connection, if online.
func (m *Manager) SendToUser(userID string, message []byte) {
	m.mutex.RLock()
	client, ok := m.clients[userID]
	m.mutex.RUnlock()

	if !ok {
		return
	}

	select {
	case client.Send <- message:
	default:
		log.Printf("WebSocket: send buffer full for %s, dropping connection", userID)
		m.RemoveClient(userID)
	}
}

// SendToChatRoom broadcasts to every member currently joined to the chat
// room. excludeUserID may be empty to include everyone.
func (m *Manager) SendToChatRoom(chatID string, message []byte, excludeUserID string) {
	m.mutex.RLock()
	members := make([]string, 0, len(m.chatRooms[chatID]))
	for userID := range m.chatRooms[chatID] {
		if userID != excludeUserID {
			members = append(members, userID)
		}
	}
	m.mutex.RUnlock()

	for _, userID := range members {
		m.SendToUser(userID, message)
	}
}

func (m *Manager) JoinChatRoom(chatID, userID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.chatRooms[chatID] == nil {
		m.chatRooms[chatID] = make(map[string]bool)
	}
	m.chatRooms[chatID][userID] = true
}

func (m *Manager) LeaveChatRoom(chatID, userID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.chatRooms[chatID], userID)
}

func (m *Manager) RemoveClient(userID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if client, ok := m.clients[userID]; ok {
		delete(m.clients, userID)
		close(client.Send)
	}
	for _, members := range m.chatRooms {
		delete(members, userID)
	}
}

// IsOnline reports whether the user has a live connection.
func (m *Manager) IsOnline(userID string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, ok := m.clients[userID]
	return ok
}
