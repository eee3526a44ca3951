package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// Inbound message types from connected clients.
const (
	MessageTypePing          = "ping"
	MessageTypePong          = "pong"
	MessageTypeJoinChatRoom  = "join_chat_room"
	MessageTypeLeaveChatRoom = "leave_chat_room"
)

type WSMessage struct {
	Type      string      `json:"type"`
	ChatID    string      `json:"chat_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// ReadPump consumes inbound frames until the connection drops.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket: read error from %s: %v", c.UserID, err)
			}
			break
		}

		m.handleClientMessage(c, message)
	}
}

// WritePump drains the send channel onto the wire.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket: write error to %s: %v", c.UserID, err)
			return
		}
	}
}

func (m *Manager) handleClientMessage(client *Client, messageBytes []byte) {
	var wsMessage WSMessage
	if err := json.Unmarshal(messageBytes, &wsMessage); err != nil {
		log.Printf("WebSocket: bad frame from %s: %v", client.UserID, err)
		return
	}

	switch wsMessage.Type {
	case MessageTypePing:
		m.sendToClient(client, WSMessage{
			Type:      MessageTypePong,
			Timestamp: time.Now().Format(time.RFC3339),
		})

	case MessageTypeJoinChatRoom:
		if wsMessage.ChatID == "" {
			return
		}
		m.JoinChatRoom(wsMessage.ChatID, client.UserID)
		client.ActiveChatRoom = wsMessage.ChatID
		log.Printf("WebSocket: client %s joined chat room %s", client.UserID, wsMessage.ChatID)
		if m.OnJoinRoom != nil {
			m.OnJoinRoom(wsMessage.ChatID, client.UserID)
		}

	case MessageTypeLeaveChatRoom:
		if wsMessage.ChatID == "" {
			return
		}
		m.LeaveChatRoom(wsMessage.ChatID, client.UserID)
		if client.ActiveChatRoom == wsMessage.ChatID {
			client.ActiveChatRoom = ""
		}
		log.Printf("WebSocket: client %s left chat room %s", client.UserID, wsMessage.ChatID)
		if m.OnLeaveRoom != nil {
			m.OnLeaveRoom(wsMessage.ChatID, client.UserID)
		}

	default:
		log.Printf("WebSocket: unknown message type %q from %s", wsMessage.Type, client.UserID)
	}
}

func (m *Manager) sendToClient(client *Client, message WSMessage) {
	payload, err := json.Marshal(message)
	if err != nil {
		log.Printf("WebSocket: marshal error for %s: %v", client.UserID, err)
		return
	}

	select {
	case client.Send <- payload:
	default:
		log.Printf("WebSocket: client %s send channel full, closing", client.UserID)
		m.RemoveClient(client.UserID)
	}
}
