package websocket

import (
	"sync"

	"github.com/miftajuneidi2008/ansar-dfp/internal/metrics"
)

// Hub tracks the live WebSocket connections and fans messages out to them.
type Hub struct {
	clients map[*Client]bool

	// Broadcast sends a message to every connected client.
	Broadcast chan []byte

	Register   chan *Client
	Unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run processes register, unregister and broadcast events. Call it in its
// own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.WebSocketConnected()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				metrics.WebSocketDisconnected()
			}
			h.mu.Unlock()

		case message := <-h.Broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
					metrics.WebSocketDisconnected()
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToUser delivers a message to every connection of one user. A
// client whose send buffer is full is dropped.
func (h *Hub) BroadcastToUser(userID string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if client.UserID == userID {
			select {
			case client.Send <- message:
			default:
				close(client.Send)
				delete(h.clients, client)
				metrics.WebSocketDisconnected()
			}
		}
	}
}

// HasClient reports whether a client with the given ID is connected.
func (h *Hub) HasClient(clientID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.ID == clientID {
			return true
		}
	}
	return false
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
