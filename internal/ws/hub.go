package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rasa-pos/api/internal/notify"
)

// StaffRoom receives every order event. Customers subscribe to their own
// room and only see events for their orders.
const StaffRoom = "staff"

// CustomerRoom returns the room name for a single customer.
func CustomerRoom(customerID uuid.UUID) string {
	return "customer:" + customerID.String()
}

var errHubStopped = errors.New("hub stopped")

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// roomEvent routes an event to the named rooms.
type roomEvent struct {
	Rooms []string
	Event Event
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients by room name
	rooms map[string]map[*Client]bool

	// Inbound messages from clients (register/unregister)
	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *roomEvent

	// Closed when Run returns
	done chan struct{}

	// Mutex for thread-safe room access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *roomEvent, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop and returns when ctx is cancelled.
// All remaining client connections are closed on return.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for room, clients := range h.rooms {
				for client := range clients {
					close(client.send)
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
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
			h.removeLocked(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			// Marshal event to JSON once
			message, err := json.Marshal(event.Event)
			if err != nil {
				continue
			}

			h.mu.Lock()
			for _, room := range event.Rooms {
				for client := range h.rooms[room] {
					select {
					case client.send <- message:
					default:
						// Client's send buffer is full, drop it
						h.removeLocked(client)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.rooms[client.room]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	// Clean up empty rooms
	if len(clients) == 0 {
		delete(h.rooms, client.room)
	}
}

// Broadcast queues an event for the given rooms. It gives up when ctx is
// done before the hub accepts the event.
func (h *Hub) Broadcast(ctx context.Context, event Event, rooms ...string) error {
	select {
	case h.broadcast <- &roomEvent{Rooms: rooms, Event: event}:
		return nil
	case <-h.done:
		return errHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publish implements notify.Publisher: staff see every order event, the
// ordering customer sees events for their own order.
func (h *Hub) Publish(ctx context.Context, ev notify.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.Type, err)
	}
	rooms := []string{StaffRoom}
	if ev.CustomerID != uuid.Nil {
		rooms = append(rooms, CustomerRoom(ev.CustomerID))
	}
	return h.Broadcast(ctx, Event{Type: ev.Type, Payload: payload}, rooms...)
}
