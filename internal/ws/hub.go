package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/survivordraft/internal/model"
)

// Hub fans room snapshots out to the connections in a single room.
// Membership changes apply immediately; broadcasts are delivered by Run.
type Hub struct {
	roomCode model.RoomCode
	clients  map[*Client]bool
	closed   bool
	mu       sync.RWMutex
	logger   *slog.Logger

	broadcast chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewHub creates a new Hub for a room
func NewHub(roomCode model.RoomCode, logger *slog.Logger) *Hub {
	return &Hub{
		roomCode:  roomCode,
		clients:   make(map[*Client]bool),
		logger:    logger.With(slog.String("room_code", string(roomCode))),
		broadcast: make(chan []byte, 256),
		done:      make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Debug("ws hub started")
	for {
		select {
		case message := <-h.broadcast:
			h.mu.RLock()
			dropped := 0
			for client := range h.clients {
				if !client.Send(message) {
					dropped++
				}
			}
			sent := len(h.clients) - dropped
			h.mu.RUnlock()
			if dropped > 0 {
				h.logger.Warn("ws broadcast partial failure",
					slog.Int("sent", sent),
					slog.Int("dropped", dropped))
			}

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			clear(h.clients)
			h.mu.Unlock()
			h.logger.Debug("ws hub stopped", slog.Int("detached_clients", clientCount))
			return
		}
	}
}

// Register adds a client to the hub. It is a no-op once the hub is closed.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.clients[client] = true
	clientCount := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("ws client registered",
		slog.String("connection_id", client.id),
		slog.Int("total_clients", clientCount))
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	clientCount := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("ws client unregistered",
		slog.String("connection_id", client.id),
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
		slog.Int("total_clients", clientCount))
}

// Broadcast sends a message to all clients
func (h *Hub) Broadcast(message []byte) {
	select {
	case <-h.done:
		return
	default:
	}
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("ws broadcast dropped - hub buffer full")
	}
}

// Close shuts down the hub. Clients stay connected but stop receiving room updates.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		h.mu.Lock()
		h.closed = true
		h.mu.Unlock()
		close(h.done)
	})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HubManager manages hubs for all rooms
type HubManager struct {
	hubs   map[model.RoomCode]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.RoomCode]*Hub),
		logger: logger.With(slog.String("component", "ws")),
	}
}

// Join registers the client with the room's hub, creating the hub if needed
func (m *HubManager) Join(roomCode model.RoomCode, client *Client) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub, ok := m.hubs[roomCode]
	if !ok {
		hub = NewHub(roomCode, m.logger)
		m.hubs[roomCode] = hub
		go hub.Run()
	}
	hub.Register(client)
	return hub
}

// Leave unregisters the client and removes the hub once it is empty
func (m *HubManager) Leave(hub *Hub, client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub.Unregister(client)
	if hub.ClientCount() == 0 && m.hubs[hub.roomCode] == hub {
		hub.Close()
		delete(m.hubs, hub.roomCode)
	}
}

// GetHub returns the hub for a room, or nil if it doesn't exist
func (m *HubManager) GetHub(roomCode model.RoomCode) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[roomCode]
}

// Broadcast sends a message to a room's hub, if it has one
func (m *HubManager) Broadcast(roomCode model.RoomCode, message []byte) {
	if hub := m.GetHub(roomCode); hub != nil {
		hub.Broadcast(message)
	}
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(roomCode model.RoomCode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[roomCode]; ok {
		hub.Close()
		delete(m.hubs, roomCode)
		m.logger.Info("ws hub removed", slog.String("room_code", string(roomCode)))
	}
}

// CloseAll closes every hub
func (m *HubManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for code, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, code)
	}
}
