package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careq/careq/internal/platform/realtime"
	"github.com/careq/careq/pkg/apperr"
)

type mockRepo struct {
	notifications map[uuid.UUID]*Notification
}

func newMockRepo() *mockRepo {
	return &mockRepo{notifications: make(map[uuid.UUID]*Notification)}
}

func (m *mockRepo) Create(_ context.Context, n *Notification) error {
	n.ID = uuid.New()
	m.notifications[n.ID] = n
	return nil
}

func (m *mockRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	var items []*Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			items = append(items, n)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return apperr.NotFound("notification not found")
	}
	n.IsRead = true
	return nil
}

type recordingBroadcaster struct {
	rooms  []string
	events []string
}

func (r *recordingBroadcaster) Broadcast(room, event string, _ interface{}) {
	r.rooms = append(r.rooms, room)
	r.events = append(r.events, event)
}

func TestService_NotifyPersistsAndPushes(t *testing.T) {
	repo := newMockRepo()
	b := &recordingBroadcaster{}
	svc := NewService(repo, b, zerolog.Nop())

	userID := uuid.New()
	n, err := svc.Notify(context.Background(), userID, "Report ready", "Your blood report has been uploaded.", TypeReport)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	if n.IsRead {
		t.Fatal("new notification must be unread")
	}
	if len(repo.notifications) != 1 {
		t.Fatalf("expected 1 persisted notification, got %d", len(repo.notifications))
	}
	if len(b.events) != 1 || b.events[0] != realtime.EventNotification {
		t.Fatalf("expected one notification event, got %v", b.events)
	}
	if b.rooms[0] != realtime.UserRoom(userID) {
		t.Fatalf("pushed to wrong room %s", b.rooms[0])
	}
}

func TestService_NotifyValidation(t *testing.T) {
	svc := NewService(newMockRepo(), &recordingBroadcaster{}, zerolog.Nop())

	if _, err := svc.Notify(context.Background(), uuid.Nil, "t", "m", ""); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for nil user, got %v", err)
	}
	if _, err := svc.Notify(context.Background(), uuid.New(), "t", "", ""); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for empty message, got %v", err)
	}
}

func TestService_MarkReadOwnerOnly(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &recordingBroadcaster{}, zerolog.Nop())

	userID := uuid.New()
	n, err := svc.Notify(context.Background(), userID, "", "queue update", TypeQueue)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	if err := svc.MarkRead(context.Background(), n.ID, uuid.New()); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for foreign user, got %v", err)
	}
	if err := svc.MarkRead(context.Background(), n.ID, userID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !repo.notifications[n.ID].IsRead {
		t.Fatal("notification not marked read")
	}
}
