package ws

import (
	"sync"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/logger"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
)

// Event is the envelope pushed over the socket. The dashboard switches
// on Type to decide where to render the payload.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Manager tracks one connection set per user and fans events out to
// them. It satisfies services.Pusher so the service layer can push
// notifications without knowing about websockets.
type Manager struct {
	clients    map[string][]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	mu         sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event),
	}
}

// Run owns the clients map mutations. Call it once in a goroutine.
func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			m.clients[client.UserID] = append(m.clients[client.UserID], client)
			total := len(m.clients[client.UserID])
			m.mu.Unlock()
			logger.Info("websocket client connected", "user_id", client.UserID, "connections", total)

		case client := <-m.unregister:
			m.mu.Lock()
			conns := m.clients[client.UserID]
			for i, c := range conns {
				if c == client {
					close(c.Send)
					m.clients[client.UserID] = append(conns[:i], conns[i+1:]...)
					break
				}
			}
			if len(m.clients[client.UserID]) == 0 {
				delete(m.clients, client.UserID)
			}
			m.mu.Unlock()
			logger.Info("websocket client disconnected", "user_id", client.UserID)

		case event := <-m.broadcast:
			m.broadcastEvent(event)
		}
	}
}

// Push delivers a notification to every open connection of the user.
// Users without a connection just miss the push; the notification feed
// still has the row.
func (m *Manager) Push(userID string, notification *models.Notification) {
	m.SendToUser(userID, Event{Type: "notification", Payload: notification})
}

// SendToUser delivers an event to one user's connections.
func (m *Manager) SendToUser(userID string, event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, client := range m.clients[userID] {
		select {
		case client.Send <- event:
		default:
			// Send buffer full, drop the connection.
			go func(c *Client) { m.unregister <- c }(client)
		}
	}
}

// Broadcast queues an event for every connected user.
func (m *Manager) Broadcast(event Event) {
	m.broadcast <- event
}

func (m *Manager) broadcastEvent(event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for userID, conns := range m.clients {
		for _, client := range conns {
			select {
			case client.Send <- event:
			default:
				logger.Warn("dropping slow websocket client", "user_id", userID)
				go func(c *Client) { m.unregister <- c }(client)
			}
		}
	}
}

// IsConnected reports whether the user has at least one open socket.
func (m *Manager) IsConnected(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients[userID]) > 0
}

// ClientCount returns the number of users currently connected.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}
