// Package queue implements the live OPD queue: per-doctor daily queues,
// token progression, wait estimation and the crowd classifier.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Queue statuses.
const (
	StatusActive = "active"
	StatusClosed = "closed"
)

// Queue item statuses.
const (
	ItemWaiting   = "waiting"
	ItemServing   = "serving"
	ItemCompleted = "completed"
)

// Urgency levels for queue items.
const (
	UrgencyNormal   = "normal"
	UrgencyModerate = "moderate"
	UrgencyCritical = "critical"
)

// WaitPerPatientMinutes is the flat per-patient estimate used when a
// patient joins. The figure is never revised afterwards.
const WaitPerPatientMinutes = 5

// Queue maps to the queues table. Items are loaded ordered by token number.
// CurrentToken counts queue joins and is numbered independently of the
// booking tokens handed out by the doctor day counter.
type Queue struct {
	ID           uuid.UUID   `json:"id"`
	HospitalID   uuid.UUID   `json:"hospitalId"`
	DoctorID     uuid.UUID   `json:"doctorId"`
	OPDDate      time.Time   `json:"opdDate"`
	CurrentToken int         `json:"currentToken"`
	Status       string      `json:"status"`
	Items        []QueueItem `json:"items"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// QueueItem maps to the queue_items table.
type QueueItem struct {
	ID                   uuid.UUID `json:"id"`
	QueueID              uuid.UUID `json:"-"`
	TokenNumber          int       `json:"tokenNumber"`
	PatientID            uuid.UUID `json:"patientId"`
	Urgency              string    `json:"urgency"`
	Status               string    `json:"status"`
	EstimatedWaitMinutes int       `json:"estimatedWaitTime"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// Alert is pushed to a queue room when a waiting patient's turn is near.
type Alert struct {
	TokenNumber int    `json:"tokenNumber"`
	Message     string `json:"message"`
}
