package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// fakeQueueStreamer records the operations the gateway invoked.
type fakeQueueStreamer struct {
	snapshotCalls []uuid.UUID
	advanceCalls  []uuid.UUID
	statusCalls   []string
	alertCalls    []uuid.UUID
	snapshot      interface{}
	err           error
}

func (f *fakeQueueStreamer) Snapshot(_ context.Context, queueID uuid.UUID) (interface{}, error) {
	f.snapshotCalls = append(f.snapshotCalls, queueID)
	return f.snapshot, f.err
}

func (f *fakeQueueStreamer) AdvanceNext(_ context.Context, queueID uuid.UUID) error {
	f.advanceCalls = append(f.advanceCalls, queueID)
	return f.err
}

func (f *fakeQueueStreamer) SetItemStatus(_ context.Context, queueID uuid.UUID, token int, status string) error {
	f.statusCalls = append(f.statusCalls, status)
	return f.err
}

func (f *fakeQueueStreamer) CheckAlerts(_ context.Context, queueID uuid.UUID) error {
	f.alertCalls = append(f.alertCalls, queueID)
	return f.err
}

type fakeCrowdReporter struct {
	calls   []uuid.UUID
	payload interface{}
	err     error
}

func (f *fakeCrowdReporter) CrowdFor(_ context.Context, hospitalID uuid.UUID) (interface{}, error) {
	f.calls = append(f.calls, hospitalID)
	return f.payload, f.err
}

func newTestGateway(queues *fakeQueueStreamer, crowd *fakeCrowdReporter) (*Gateway, *Hub) {
	hub := NewHub(zerolog.Nop())
	return NewGateway(hub, queues, crowd, zerolog.Nop()), hub
}

func mustRaw(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestGateway_JoinHospitalBroadcastsCrowd(t *testing.T) {
	crowd := &fakeCrowdReporter{payload: map[string]string{"level": "LOW"}}
	gw, hub := newTestGateway(&fakeQueueStreamer{}, crowd)

	client := newTestClient("c1")
	hub.Register(client)

	hospitalID := uuid.New()
	gw.dispatch(client, clientMessage{
		Event: eventJoinHospital,
		Data:  mustRaw(t, map[string]string{"hospitalId": hospitalID.String()}),
	})

	if len(crowd.calls) != 1 || crowd.calls[0] != hospitalID {
		t.Fatalf("expected crowd lookup for %s, got %v", hospitalID, crowd.calls)
	}
	if hub.RoomCount(HospitalRoom(hospitalID)) != 1 {
		t.Fatal("client was not joined to hospital room")
	}

	select {
	case msg := <-client.Send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if received.Name != EventCrowdUpdate {
			t.Fatalf("expected %s, got %s", EventCrowdUpdate, received.Name)
		}
	case <-time.After(time.Second):
		t.Fatal("client did not receive crowd-update")
	}
}

func TestGateway_JoinQueueBroadcastsSnapshotToRoom(t *testing.T) {
	queues := &fakeQueueStreamer{snapshot: map[string]int{"currentToken": 2}}
	gw, hub := newTestGateway(queues, &fakeCrowdReporter{})

	queueID := uuid.New()

	watcher := newTestClient("c2-watcher")
	hub.Register(watcher)
	hub.Join(watcher, QueueRoom(queueID))

	joiner := newTestClient("c2-joiner")
	hub.Register(joiner)

	gw.dispatch(joiner, clientMessage{
		Event: eventJoinQueue,
		Data:  mustRaw(t, map[string]string{"queueId": queueID.String()}),
	})

	if len(queues.snapshotCalls) != 1 || queues.snapshotCalls[0] != queueID {
		t.Fatalf("expected snapshot for %s, got %v", queueID, queues.snapshotCalls)
	}
	if hub.RoomCount(QueueRoom(queueID)) != 2 {
		t.Fatal("joiner was not added to queue room")
	}

	for _, client := range []*Client{joiner, watcher} {
		select {
		case msg := <-client.Send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if received.Name != EventQueueUpdate {
				t.Fatalf("expected %s, got %s", EventQueueUpdate, received.Name)
			}
		case <-time.After(time.Second):
			t.Fatalf("client %s did not receive queue snapshot", client.ID)
		}
	}
}

func TestGateway_JoinUser(t *testing.T) {
	gw, hub := newTestGateway(&fakeQueueStreamer{}, &fakeCrowdReporter{})

	client := newTestClient("c3")
	hub.Register(client)

	userID := uuid.New()
	gw.dispatch(client, clientMessage{
		Event: eventJoinUser,
		Data:  mustRaw(t, map[string]string{"userId": userID.String()}),
	})

	if hub.RoomCount(UserRoom(userID)) != 1 {
		t.Fatal("client was not joined to user room")
	}
}

func TestGateway_QueueOperations(t *testing.T) {
	queues := &fakeQueueStreamer{}
	gw, hub := newTestGateway(queues, &fakeCrowdReporter{})

	client := newTestClient("c4")
	hub.Register(client)

	queueID := uuid.New()

	gw.dispatch(client, clientMessage{
		Event: eventNextToken,
		Data:  mustRaw(t, map[string]string{"queueId": queueID.String()}),
	})
	if len(queues.advanceCalls) != 1 {
		t.Fatalf("expected 1 advance call, got %d", len(queues.advanceCalls))
	}

	gw.dispatch(client, clientMessage{
		Event: eventUpdateToken,
		Data: mustRaw(t, map[string]interface{}{
			"queueId":     queueID.String(),
			"tokenNumber": 3,
			"status":      "completed",
		}),
	})
	if len(queues.statusCalls) != 1 || queues.statusCalls[0] != "completed" {
		t.Fatalf("expected completed status call, got %v", queues.statusCalls)
	}

	gw.dispatch(client, clientMessage{
		Event: eventCheckAlerts,
		Data:  mustRaw(t, map[string]string{"queueId": queueID.String()}),
	})
	if len(queues.alertCalls) != 1 {
		t.Fatalf("expected 1 alert call, got %d", len(queues.alertCalls))
	}
}

func TestGateway_UnknownAndMalformedEventsIgnored(t *testing.T) {
	queues := &fakeQueueStreamer{}
	gw, hub := newTestGateway(queues, &fakeCrowdReporter{})

	client := newTestClient("c5")
	hub.Register(client)

	gw.dispatch(client, clientMessage{Event: "ping"})
	gw.dispatch(client, clientMessage{Event: eventNextToken, Data: json.RawMessage(`{bad`)})

	if len(queues.advanceCalls) != 0 {
		t.Fatalf("malformed payload must not reach the service, got %d calls", len(queues.advanceCalls))
	}
	if hub.ClientCount() != 1 {
		t.Fatal("client must stay connected after bad messages")
	}
}
