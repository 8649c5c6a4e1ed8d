package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careq/careq/internal/platform/realtime"
	"github.com/careq/careq/pkg/apperr"
)

// Service persists notifications and pushes each one to the recipient's
// realtime room. Delivery is best effort: a user without an open socket
// simply finds the notification on their next list call.
type Service struct {
	repo      Repository
	broadcast realtime.Broadcaster
	logger    zerolog.Logger
}

func NewService(repo Repository, broadcast realtime.Broadcaster, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		broadcast: broadcast,
		logger:    logger.With().Str("component", "notification").Logger(),
	}
}

// Notify persists a notification and pushes it to the user's room.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, title, message, typ string) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, apperr.Validation("user id is required")
	}
	if message == "" {
		return nil, apperr.Validation("message is required")
	}
	if typ == "" {
		typ = TypeGeneral
	}

	n := &Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    typ,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	s.broadcast.Broadcast(realtime.UserRoom(userID), realtime.EventNotification, n)
	return n, nil
}

// ListMine returns the user's notifications, newest first.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// MarkRead marks one of the user's notifications as read.
func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, userID)
}
