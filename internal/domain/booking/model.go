// Package booking orchestrates OPD and online-consultation appointments:
// validation, booking caps, token allocation, fees and cancellation.
package booking

import (
	"time"

	"github.com/google/uuid"
)

// Appointment types.
const (
	TypeOPD    = "opd"
	TypeOnline = "online"
)

// Appointment statuses.
const (
	StatusBooked         = "booked"
	StatusConfirmed      = "confirmed"
	StatusCheckedIn      = "checked-in"
	StatusInConsultation = "in-consultation"
	StatusCompleted      = "completed"
	StatusCancelled      = "cancelled"
	StatusNoShow         = "no-show"
)

// Cancellation actors.
const (
	CancelledByUser   = "user"
	CancelledByDoctor = "doctor"
	CancelledBySystem = "system"
)

// MaxOPDBookingsPerDay caps a patient's non-cancelled OPD bookings at one
// hospital on one day.
const MaxOPDBookingsPerDay = 2

// HospitalSnapshot freezes the hospital details at booking time. Later
// hospital edits do not rewrite history.
type HospitalSnapshot struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Type string    `json:"type"`
}

// DoctorSnapshot freezes the doctor details at booking time.
type DoctorSnapshot struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Qualification string    `json:"qualification"`
}

// PatientSnapshot freezes the patient details given at booking time.
type PatientSnapshot struct {
	UserID uuid.UUID `json:"userId"`
	Name   string    `json:"name"`
	Age    int       `json:"age"`
	Gender string    `json:"gender"`
	Phone  string    `json:"phone"`
}

// Schedule is the day and slot an appointment is booked for. Date carries
// day granularity only.
type Schedule struct {
	Date     time.Time `json:"date"`
	TimeSlot string    `json:"timeSlot"`
	Shift    string    `json:"shift"`
}

// Fees of an appointment in rupees.
type Fees struct {
	Registration int `json:"registration"`
	Consultation int `json:"consultation"`
	Total        int `json:"total"`
}

// Appointment maps to the appointments table.
type Appointment struct {
	ID                 uuid.UUID        `json:"id"`
	AppointmentCode    string           `json:"appointmentCode"`
	Type               string           `json:"type"`
	Status             string           `json:"status"`
	Hospital           HospitalSnapshot `json:"hospital"`
	Department         string           `json:"department"`
	Doctor             DoctorSnapshot   `json:"doctor"`
	Schedule           Schedule         `json:"schedule"`
	TokenNumber        int              `json:"tokenNumber,omitempty"`
	QueuePosition      int              `json:"queuePosition,omitempty"`
	Patient            PatientSnapshot  `json:"patient"`
	Fees               Fees             `json:"fees"`
	CancelledBy        string           `json:"cancelledBy,omitempty"`
	CancelledAt        *time.Time       `json:"cancelledAt,omitempty"`
	CancellationReason string           `json:"cancellationReason,omitempty"`
	Instructions       string           `json:"instructions,omitempty"`
	Source             string           `json:"source,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// Slot is one bookable time range on the availability endpoint.
type Slot struct {
	TimeSlot  string `json:"timeSlot"`
	Shift     string `json:"shift"`
	Available bool   `json:"available"`
}
