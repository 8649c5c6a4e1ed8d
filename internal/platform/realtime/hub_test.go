package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func newTestClient(id string) *Client {
	return &Client{
		ID:   id,
		Send: make(chan []byte, 256),
	}
}

func TestHub_RegisterAndJoin(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := newTestClient("client-1")
	room := QueueRoom(uuid.New())

	hub.Register(client)
	hub.Join(client, room)

	if hub.ClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.ClientCount())
	}
	if hub.RoomCount(room) != 1 {
		t.Fatalf("expected 1 client in room, got %d", hub.RoomCount(room))
	}

	// Joining twice must not duplicate membership.
	hub.Join(client, room)
	if hub.RoomCount(room) != 1 {
		t.Fatalf("expected 1 client after duplicate join, got %d", hub.RoomCount(room))
	}
	if len(client.Rooms) != 1 {
		t.Fatalf("expected 1 tracked room, got %d", len(client.Rooms))
	}
}

func TestHub_UnregisterLeavesAllRooms(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := newTestClient("client-2")
	hospital := HospitalRoom(uuid.New())
	user := UserRoom(uuid.New())

	hub.Register(client)
	hub.Join(client, hospital)
	hub.Join(client, user)

	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Fatalf("expected 0 clients, got %d", hub.ClientCount())
	}
	if hub.RoomCount(hospital) != 0 || hub.RoomCount(user) != 0 {
		t.Fatal("expected rooms emptied after unregister")
	}

	// Send channel must be closed so the write pump terminates.
	select {
	case _, ok := <-client.Send:
		if ok {
			t.Fatal("expected closed Send channel")
		}
	default:
		t.Fatal("expected Send channel to be closed")
	}
}

func TestHub_Leave(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := newTestClient("client-3")
	room := QueueRoom(uuid.New())

	hub.Register(client)
	hub.Join(client, room)
	hub.Leave(client, room)

	if hub.RoomCount(room) != 0 {
		t.Fatalf("expected empty room, got %d", hub.RoomCount(room))
	}
	if len(client.Rooms) != 0 {
		t.Fatalf("expected no tracked rooms, got %v", client.Rooms)
	}
}

func TestHub_BroadcastIsRoomScoped(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	queueID := uuid.New()

	member := newTestClient("member")
	outsider := newTestClient("outsider")

	hub.Register(member)
	hub.Register(outsider)
	hub.Join(member, QueueRoom(queueID))
	hub.Join(outsider, QueueRoom(uuid.New()))

	hub.Broadcast(QueueRoom(queueID), EventQueueUpdate, map[string]int{"currentToken": 4})

	select {
	case msg := <-member.Send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("failed to unmarshal event: %v", err)
		}
		if received.Name != EventQueueUpdate {
			t.Fatalf("expected %s, got %s", EventQueueUpdate, received.Name)
		}
		if received.Room != QueueRoom(queueID) {
			t.Fatalf("expected room %s, got %s", QueueRoom(queueID), received.Room)
		}
	case <-time.After(time.Second):
		t.Fatal("member did not receive event")
	}

	select {
	case <-outsider.Send:
		t.Fatal("outsider should not have received event")
	default:
		// expected
	}
}

func TestHub_BroadcastSkipsSlowClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	room := QueueRoom(uuid.New())

	slow := &Client{ID: "slow", Send: make(chan []byte)} // unbuffered, never drained
	hub.Register(slow)
	hub.Join(slow, room)

	done := make(chan struct{})
	go func() {
		hub.Broadcast(room, EventQueueUpdate, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on slow client")
	}
}

func TestHub_SendDirect(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := newTestClient("direct")
	hub.Register(client)

	hub.Send(client, EventQueueUpdate, map[string]string{"status": "ACTIVE"})

	select {
	case msg := <-client.Send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("failed to unmarshal: %v", err)
		}
		if received.Name != EventQueueUpdate {
			t.Fatalf("expected %s, got %s", EventQueueUpdate, received.Name)
		}
		if received.Room != "" {
			t.Fatalf("direct sends carry no room, got %s", received.Room)
		}
	case <-time.After(time.Second):
		t.Fatal("client did not receive direct event")
	}
}

func TestRoomNames(t *testing.T) {
	id := uuid.MustParse("6d2c1f4e-0000-0000-0000-000000000001")

	if got := HospitalRoom(id); got != "hospital:"+id.String() {
		t.Fatalf("unexpected hospital room %s", got)
	}
	if got := QueueRoom(id); got != "queue:"+id.String() {
		t.Fatalf("unexpected queue room %s", got)
	}
	if got := UserRoom(id); got != "user:"+id.String() {
		t.Fatalf("unexpected user room %s", got)
	}
}
