// Package ws pushes order invalidation hints to connected staff screens.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/MarcusAlienx/casanala/internal/events"
	"go.uber.org/zap"
)

// RoomAll receives every order event regardless of view.
const RoomAll = "all"

// ErrHubClosed is returned by Notify once Run has returned.
var ErrHubClosed = errors.New("websocket hub closed")

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// roomEvent routes an event to a single view room
type roomEvent struct {
	Room  string
	Event Event
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients by room (view name)
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	broadcast chan *roomEvent

	// done is closed when Run returns; sends to the hub select on it.
	done chan struct{}

	mu  sync.RWMutex
	log *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *roomEvent, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the hub's main loop and returns when ctx is done.
// This should be called as a goroutine: go hub.Run(ctx)
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.room] == nil {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if _, exists := clients[client]; exists {
					h.drop(client)
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event.Event)
			if err != nil {
				h.log.Error("marshal websocket event", zap.String("type", event.Event.Type), zap.Error(err))
				continue
			}

			h.mu.Lock()
			for client := range h.rooms[event.Room] {
				select {
				case client.send <- message:
				default:
					// Slow consumer; it reconnects and re-fetches.
					h.log.Warn("dropping slow websocket client", zap.String("room", client.room))
					h.drop(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop removes client and cleans up its room. Caller holds h.mu.
func (h *Hub) drop(client *Client) {
	clients := h.rooms[client.room]
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.room)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.rooms {
		for client := range clients {
			h.drop(client)
		}
	}
}

// Broadcast sends an event to all clients subscribed to room.
// It is a no-op once the hub has stopped.
func (h *Hub) Broadcast(room string, event Event) {
	select {
	case h.broadcast <- &roomEvent{Room: room, Event: event}:
	case <-h.done:
	}
}

// Notify implements events.Notifier. The event goes to every view it names
// plus the catch-all room.
func (h *Hub) Notify(ctx context.Context, e events.OrderEvent) error {
	select {
	case <-h.done:
		return ErrHubClosed
	default:
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	msg := Event{Type: string(e.Kind), Payload: payload}

	rooms := append(append([]string{}, e.Views...), RoomAll)
	for _, room := range rooms {
		select {
		case h.broadcast <- &roomEvent{Room: room, Event: msg}:
		case <-ctx.Done():
			return ctx.Err()
		case <-h.done:
			return ErrHubClosed
		}
	}
	return nil
}

// ClientCount reports the number of connected clients in room.
func (h *Hub) ClientCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
