package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rasa-pos/api/internal/notify"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, room string) *Client {
	return &Client{
		hub:  hub,
		room: room,
		send: make(chan []byte, 256),
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub()
	go hub.Run(ctx)
	return hub
}

func TestHubRegistration(t *testing.T) {
	hub := startHub(t)

	client := mockClient(hub, StaffRoom)

	hub.register <- client

	// Give hub time to process
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if hub.rooms[StaffRoom] == nil {
		t.Fatal("staff room not created")
	}
	if !hub.rooms[StaffRoom][client] {
		t.Fatal("client not registered in staff room")
	}
}

func TestHubCleanupEmptyRoom(t *testing.T) {
	hub := startHub(t)

	room := CustomerRoom(uuid.New())
	client1 := mockClient(hub, room)
	client2 := mockClient(hub, room)

	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if len(hub.rooms[room]) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(hub.rooms[room]))
	}
	hub.mu.RUnlock()

	hub.unregister <- client1
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if len(hub.rooms[room]) != 1 {
		t.Fatalf("expected 1 client after first unregister, got %d", len(hub.rooms[room]))
	}
	hub.mu.RUnlock()

	hub.unregister <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if hub.rooms[room] != nil {
		t.Fatal("room should be deleted when last client unregisters")
	}
	hub.mu.RUnlock()
}

func TestPublish_StaffAndOwningCustomer(t *testing.T) {
	hub := startHub(t)

	owner := uuid.New()
	staff := mockClient(hub, StaffRoom)
	ownerClient := mockClient(hub, CustomerRoom(owner))
	otherCustomer := mockClient(hub, CustomerRoom(uuid.New()))

	hub.register <- staff
	hub.register <- ownerClient
	hub.register <- otherCustomer
	time.Sleep(10 * time.Millisecond)

	orderID := uuid.New()
	err := hub.Publish(context.Background(), notify.Event{
		Type:       notify.EventOrderUpdated,
		OrderID:    orderID,
		CustomerID: owner,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	for name, client := range map[string]*Client{"staff": staff, "owner": ownerClient} {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("%s: failed to unmarshal message: %v", name, err)
			}
			if received.Type != notify.EventOrderUpdated {
				t.Errorf("%s: expected type %q, got %q", name, notify.EventOrderUpdated, received.Type)
			}
			var ev notify.Event
			if err := json.Unmarshal(received.Payload, &ev); err != nil {
				t.Fatalf("%s: failed to unmarshal payload: %v", name, err)
			}
			if ev.OrderID != orderID {
				t.Errorf("%s: order ID: got %v, want %v", name, ev.OrderID, orderID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("%s did not receive message", name)
		}
	}

	select {
	case <-otherCustomer.send:
		t.Fatal("other customer should not receive another customer's order event")
	case <-time.After(50 * time.Millisecond):
		// Expected - no message
	}
}

func TestBroadcastToMultipleClientsInSameRoom(t *testing.T) {
	hub := startHub(t)

	clients := []*Client{
		mockClient(hub, StaffRoom),
		mockClient(hub, StaffRoom),
		mockClient(hub, StaffRoom),
	}
	for _, c := range clients {
		hub.register <- c
	}
	time.Sleep(10 * time.Millisecond)

	event := Event{Type: "order.created", Payload: json.RawMessage(`{"status":"pending"}`)}
	if err := hub.Broadcast(context.Background(), event, StaffRoom); err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	for i, client := range clients {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("client%d: failed to unmarshal: %v", i+1, err)
			}
			if string(received.Payload) != `{"status":"pending"}` {
				t.Errorf("client%d: payload mismatch: %s", i+1, received.Payload)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client%d did not receive message", i+1)
		}
	}
}

func TestBroadcastToEmptyRoom(t *testing.T) {
	hub := startHub(t)

	client := mockClient(hub, StaffRoom)
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	event := Event{Type: "order.created", Payload: json.RawMessage(`{"test":"data"}`)}
	if err := hub.Broadcast(context.Background(), event, CustomerRoom(uuid.New())); err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	select {
	case <-client.send:
		t.Fatal("client should not receive message for a different room")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRunClosesClientsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	client := mockClient(hub, StaffRoom)
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	cancel()

	select {
	case _, ok := <-client.send:
		if ok {
			t.Fatal("expected closed send channel")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("send channel not closed on shutdown")
	}
}
