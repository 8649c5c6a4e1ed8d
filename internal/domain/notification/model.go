// Package notification persists user notifications and pushes them to the
// user's realtime room on a best-effort basis.
package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	TypeGeneral     = "general"
	TypeAppointment = "appointment"
	TypeReport      = "report"
	TypeQueue       = "queue"
)

// Notification maps to the notifications table.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}
