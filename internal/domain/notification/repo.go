package notification

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence boundary for notifications.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
}
