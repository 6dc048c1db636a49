package ws

import (
	"encoding/json"
	"sync"

	"quizarena/pkg/logger"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Server-pushed message types. The service layer emits the same strings;
// player_connected and player_disconnected track sockets only and come from
// the hub itself.
const (
	MsgPlayerJoined       MessageType = "player_joined"
	MsgPlayerConnected    MessageType = "player_connected"
	MsgPlayerDisconnected MessageType = "player_disconnected"
	MsgPlayerCompleted    MessageType = "player_completed"
	MsgLeaderboardUpdate  MessageType = "leaderboard_update"
	MsgSessionEnded       MessageType = "session_ended"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections for sessions
type Hub struct {
	hostConns   map[string]map[string]*Connection // sessionID -> connID -> conn
	playerConns map[string]map[string]*Connection

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	closeOnce  sync.Once
}

// Connection represents a WebSocket connection
type Connection struct {
	ID        string
	SessionID string
	UserID    string
	IsHost    bool
	Send      chan []byte
}

// BroadcastMessage is a message to broadcast. Disconnect shares the queue
// so messages sent before it are delivered first.
type BroadcastMessage struct {
	SessionID  string
	ToHost     bool
	Disconnect bool
	Message    *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		hostConns:   make(map[string]map[string]*Connection),
		playerConns: make(map[string]map[string]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *BroadcastMessage, 256),
		done:        make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for _, group := range []map[string]map[string]*Connection{h.hostConns, h.playerConns} {
				for sessionID, conns := range group {
					for _, conn := range conns {
						close(conn.Send)
					}
					delete(group, sessionID)
				}
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			group := h.group(conn.IsHost)
			if group[conn.SessionID] == nil {
				group[conn.SessionID] = make(map[string]*Connection)
			}
			group[conn.SessionID][conn.ID] = conn
			if !conn.IsHost {
				h.sendLocked(h.hostConns[conn.SessionID], MsgPlayerConnected, map[string]string{"userId": conn.UserID})
			}
			h.mu.Unlock()
			logger.Debug("ws connected", "sessionId", conn.SessionID, "userId", conn.UserID, "host", conn.IsHost)

		case conn := <-h.unregister:
			h.mu.Lock()
			group := h.group(conn.IsHost)
			if conns, ok := group[conn.SessionID]; ok {
				if existing, ok := conns[conn.ID]; ok && existing == conn {
					delete(conns, conn.ID)
					close(conn.Send)
					if len(conns) == 0 {
						delete(group, conn.SessionID)
					}
					if !conn.IsHost {
						h.sendLocked(h.hostConns[conn.SessionID], MsgPlayerDisconnected, map[string]string{"userId": conn.UserID})
					}
				}
			}
			h.mu.Unlock()
			logger.Debug("ws disconnected", "sessionId", conn.SessionID, "userId", conn.UserID, "host", conn.IsHost)

		case msg := <-h.broadcast:
			if msg.Disconnect {
				h.mu.Lock()
				for _, group := range []map[string]map[string]*Connection{h.hostConns, h.playerConns} {
					for _, conn := range group[msg.SessionID] {
						close(conn.Send)
					}
					delete(group, msg.SessionID)
				}
				h.mu.Unlock()
				continue
			}
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			h.deliver(h.group(msg.ToHost)[msg.SessionID], data)
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) group(host bool) map[string]map[string]*Connection {
	if host {
		return h.hostConns
	}
	return h.playerConns
}

// deliver drops the message for connections whose buffer is full.
func (h *Hub) deliver(conns map[string]*Connection, data []byte) {
	for _, conn := range conns {
		select {
		case conn.Send <- data:
		default:
		}
	}
}

func (h *Hub) sendLocked(conns map[string]*Connection, msgType MessageType, payload interface{}) {
	if len(conns) == 0 {
		return
	}
	raw, _ := json.Marshal(payload)
	data, _ := json.Marshal(&Message{Type: msgType, Payload: raw})
	h.deliver(conns, data)
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Close stops the hub and closes every connection's send channel
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// BroadcastToHost sends a message to the session host (implements service.Broadcaster)
func (h *Hub) BroadcastToHost(sessionID string, msgType string, payload interface{}) {
	h.enqueue(sessionID, true, msgType, payload)
}

// BroadcastToPlayers sends a message to every player in a session (implements service.Broadcaster)
func (h *Hub) BroadcastToPlayers(sessionID string, msgType string, payload interface{}) {
	h.enqueue(sessionID, false, msgType, payload)
}

// DisconnectSession closes every connection of a session (implements service.Broadcaster)
func (h *Hub) DisconnectSession(sessionID string) {
	select {
	case h.broadcast <- &BroadcastMessage{SessionID: sessionID, Disconnect: true}:
	case <-h.done:
	}
}

// enqueue never blocks a request path; a full queue drops the message.
func (h *Hub) enqueue(sessionID string, toHost bool, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Warn("ws payload not serializable", "type", msgType, "error", err)
		return
	}
	msg := &BroadcastMessage{
		SessionID: sessionID,
		ToHost:    toHost,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		logger.Warn("ws broadcast queue full", "sessionId", sessionID, "type", msgType)
	}
}

// ConnectionCount reports open connections for a session
func (h *Hub) ConnectionCount(sessionID string) (hosts, players int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.hostConns[sessionID]), len(h.playerConns[sessionID])
}
