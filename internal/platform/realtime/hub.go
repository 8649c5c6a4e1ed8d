// Package realtime provides the live queue and crowd event system using
// WebSockets. It implements a hub-and-spoke pattern where clients join
// rooms (hospital, queue or user scoped) and receive events broadcast to
// those rooms.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Room name prefixes. Every live event is scoped to exactly one room.
const (
	hospitalRoomPrefix = "hospital:"
	queueRoomPrefix    = "queue:"
	userRoomPrefix     = "user:"
)

// HospitalRoom returns the room name carrying crowd updates for a hospital.
func HospitalRoom(hospitalID uuid.UUID) string {
	return hospitalRoomPrefix + hospitalID.String()
}

// QueueRoom returns the room name carrying live updates for a single queue.
func QueueRoom(queueID uuid.UUID) string {
	return queueRoomPrefix + queueID.String()
}

// UserRoom returns the room name carrying personal notifications for a user.
func UserRoom(userID uuid.UUID) string {
	return userRoomPrefix + userID.String()
}

// Event is the wire envelope sent to WebSocket clients.
type Event struct {
	Name      string      `json:"event"`
	Room      string      `json:"room,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Broadcaster is the publish side of the hub. Domain services depend on
// this interface rather than on the Hub so they can be tested with a
// recording fake.
type Broadcaster interface {
	Broadcast(room, event string, data interface{})
}

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client represents a single WebSocket connection and the rooms it joined.
type Client struct {
	ID    string
	Rooms []string
	Send  chan []byte
	conn  Conn
}

// Hub is the central connection manager that tracks clients and their room
// memberships. All operations are thread-safe via sync.RWMutex.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Client]struct{} // room -> set of clients
	all    map[*Client]struct{}            // all connected clients
	logger zerolog.Logger
}

// NewHub creates a new Hub ready to manage WebSocket clients.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Client]struct{}),
		all:    make(map[*Client]struct{}),
		logger: logger.With().Str("component", "realtime").Logger(),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.all[client] = struct{}{}
}

// Unregister removes a client from the hub and every room it joined, and
// closes the client's Send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.all[client]; !ok {
		return
	}

	for _, room := range client.Rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}

	delete(h.all, client)
	close(client.Send)
}

// Join adds an already-registered client to a room. Joining the same room
// twice is a no-op.
func (h *Hub) Join(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	if _, ok := h.rooms[room][client]; ok {
		return
	}
	h.rooms[room][client] = struct{}{}
	client.Rooms = append(client.Rooms, room)
}

// Leave removes an already-registered client from a room.
func (h *Hub) Leave(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}

	remaining := make([]string, 0, len(client.Rooms))
	for _, r := range client.Rooms {
		if r != room {
			remaining = append(remaining, r)
		}
	}
	client.Rooms = remaining
}

// Broadcast sends an event to every client in the given room. A slow client
// whose buffer is full is skipped rather than blocking the hub.
func (h *Hub) Broadcast(room, event string, data interface{}) {
	payload, err := json.Marshal(Event{
		Name:      event,
		Room:      room,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("failed to marshal event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.rooms[room]
	if !ok {
		return
	}

	for client := range members {
		select {
		case client.Send <- payload:
		default:
			// Client buffer full; skip to avoid blocking.
		}
	}
}

// Send delivers an event to a single client, bypassing rooms. Used for
// direct replies such as a queue snapshot right after joining.
func (h *Hub) Send(client *Client, event string, data interface{}) {
	payload, err := json.Marshal(Event{
		Name:      event,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("failed to marshal event")
		return
	}

	select {
	case client.Send <- payload:
	default:
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

// RoomCount returns the number of clients currently in a room.
func (h *Hub) RoomCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
