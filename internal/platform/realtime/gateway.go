package realtime

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Inbound event names understood by the gateway.
const (
	eventJoinHospital = "join-hospital"
	eventJoinUser     = "join-user"
	eventJoinQueue    = "join-queue"
	eventNextToken    = "next-token"
	eventUpdateToken  = "update-token"
	eventCheckAlerts  = "check-alerts"
)

// Outbound event names emitted by the gateway and the domain services.
const (
	EventCrowdUpdate  = "crowd-update"
	EventQueueUpdate  = "queue-update"
	EventAlert        = "alert"
	EventNotification = "notification"
)

// QueueStreamer exposes the queue operations the gateway drives from socket
// events. Mutating operations broadcast their own updates through the hub,
// so the gateway only needs the snapshot for the join-time room push.
type QueueStreamer interface {
	Snapshot(ctx context.Context, queueID uuid.UUID) (interface{}, error)
	AdvanceNext(ctx context.Context, queueID uuid.UUID) error
	SetItemStatus(ctx context.Context, queueID uuid.UUID, tokenNumber int, status string) error
	CheckAlerts(ctx context.Context, queueID uuid.UUID) error
}

// CrowdReporter computes the crowd payload broadcast to a hospital room.
type CrowdReporter interface {
	CrowdFor(ctx context.Context, hospitalID uuid.UUID) (interface{}, error)
}

// clientMessage is the inbound wire envelope from a WebSocket client.
type clientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; tighten in production.
	},
}

// Gateway handles HTTP-to-WebSocket upgrades and routes client events to
// the hub and the domain services. Handler errors are logged and dropped;
// a bad message never terminates the connection.
type Gateway struct {
	hub    *Hub
	queues QueueStreamer
	crowd  CrowdReporter
	logger zerolog.Logger
}

// NewGateway creates a Gateway bound to the given hub and services.
func NewGateway(hub *Hub, queues QueueStreamer, crowd CrowdReporter, logger zerolog.Logger) *Gateway {
	return &Gateway{
		hub:    hub,
		queues: queues,
		crowd:  crowd,
		logger: logger.With().Str("component", "realtime-gateway").Logger(),
	}
}

// RegisterRoutes registers the WebSocket endpoint on the provided Echo group.
func (g *Gateway) RegisterRoutes(grp *echo.Group) {
	grp.GET("/ws", g.HandleConnect)
}

// HandleConnect upgrades an HTTP connection to WebSocket, registers the
// client with the hub, and starts read/write pumps.
func (g *Gateway) HandleConnect(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		ID:   uuid.New().String(),
		Send: make(chan []byte, 256),
		conn: &gorillaConnAdapter{ws},
	}

	g.hub.Register(client)

	go g.writePump(client)
	go g.readPump(client)

	return nil
}

// readPump reads messages from the WebSocket connection and dispatches them.
func (g *Gateway) readPump(client *Client) {
	defer func() {
		g.hub.Unregister(client)
		client.conn.Close()
	}()

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			break
		}

		var msg clientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue // Ignore malformed messages.
		}

		g.dispatch(client, msg)
	}
}

// writePump writes messages from the Send channel to the connection.
func (g *Gateway) writePump(client *Client) {
	defer client.conn.Close()

	for message := range client.Send {
		if err := client.conn.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			break
		}
	}
}

// dispatch routes a single client event to its handler.
func (g *Gateway) dispatch(client *Client, msg clientMessage) {
	ctx := context.Background()

	var err error
	switch msg.Event {
	case eventJoinHospital:
		err = g.handleJoinHospital(ctx, client, msg.Data)
	case eventJoinUser:
		err = g.handleJoinUser(client, msg.Data)
	case eventJoinQueue:
		err = g.handleJoinQueue(ctx, client, msg.Data)
	case eventNextToken:
		var payload struct {
			QueueID uuid.UUID `json:"queueId"`
		}
		if err = json.Unmarshal(msg.Data, &payload); err == nil {
			err = g.queues.AdvanceNext(ctx, payload.QueueID)
		}
	case eventUpdateToken:
		var payload struct {
			QueueID     uuid.UUID `json:"queueId"`
			TokenNumber int       `json:"tokenNumber"`
			Status      string    `json:"status"`
		}
		if err = json.Unmarshal(msg.Data, &payload); err == nil {
			err = g.queues.SetItemStatus(ctx, payload.QueueID, payload.TokenNumber, payload.Status)
		}
	case eventCheckAlerts:
		var payload struct {
			QueueID uuid.UUID `json:"queueId"`
		}
		if err = json.Unmarshal(msg.Data, &payload); err == nil {
			err = g.queues.CheckAlerts(ctx, payload.QueueID)
		}
	default:
		return // Unknown events are ignored.
	}

	if err != nil {
		g.logger.Error().Err(err).Str("event", msg.Event).Str("client", client.ID).
			Msg("socket event failed")
	}
}

// handleJoinHospital subscribes the client to a hospital room and pushes a
// fresh crowd reading to the whole room.
func (g *Gateway) handleJoinHospital(ctx context.Context, client *Client, data json.RawMessage) error {
	var payload struct {
		HospitalID uuid.UUID `json:"hospitalId"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}

	room := HospitalRoom(payload.HospitalID)
	g.hub.Join(client, room)

	crowd, err := g.crowd.CrowdFor(ctx, payload.HospitalID)
	if err != nil {
		return err
	}
	g.hub.Broadcast(room, EventCrowdUpdate, crowd)
	return nil
}

// handleJoinUser subscribes the client to its personal notification room.
func (g *Gateway) handleJoinUser(client *Client, data json.RawMessage) error {
	var payload struct {
		UserID uuid.UUID `json:"userId"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	g.hub.Join(client, UserRoom(payload.UserID))
	return nil
}

// handleJoinQueue subscribes the client to a queue room and pushes the
// current queue snapshot to every room member, the joiner included.
func (g *Gateway) handleJoinQueue(ctx context.Context, client *Client, data json.RawMessage) error {
	var payload struct {
		QueueID uuid.UUID `json:"queueId"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}

	room := QueueRoom(payload.QueueID)
	g.hub.Join(client, room)

	snapshot, err := g.queues.Snapshot(ctx, payload.QueueID)
	if err != nil {
		return err
	}
	g.hub.Broadcast(room, EventQueueUpdate, snapshot)
	return nil
}

// gorillaConnAdapter wraps a gorilla/websocket.Conn to satisfy Conn.
type gorillaConnAdapter struct {
	conn *gorillawebsocket.Conn
}

func (a *gorillaConnAdapter) ReadMessage() (int, []byte, error) {
	return a.conn.ReadMessage()
}

func (a *gorillaConnAdapter) WriteMessage(messageType int, data []byte) error {
	return a.conn.WriteMessage(messageType, data)
}

func (a *gorillaConnAdapter) Close() error {
	return a.conn.Close()
}
