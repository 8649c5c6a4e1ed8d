package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence boundary for queues and their items.
//
// NextToken increments the queue's current_token atomically and returns the
// new value. AdvanceItems applies the serving->completed and
// waiting->serving writes of one advance step in a single transaction.
type Repository interface {
	Create(ctx context.Context, q *Queue) error
	GetByID(ctx context.Context, id uuid.UUID) (*Queue, error)
	FindActive(ctx context.Context, hospitalID, doctorID uuid.UUID, day time.Time) (*Queue, error)
	NextToken(ctx context.Context, queueID uuid.UUID) (int, error)
	AddItem(ctx context.Context, item *QueueItem) error
	CountItems(ctx context.Context, queueID uuid.UUID) (int, error)
	UpdateItemStatus(ctx context.Context, queueID uuid.UUID, tokenNumber int, status string) error
	AdvanceItems(ctx context.Context, queueID uuid.UUID, servingToken, nextToken int) error
	CloseBefore(ctx context.Context, day time.Time) (int64, error)
}
