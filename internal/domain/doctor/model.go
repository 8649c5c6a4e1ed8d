// Package doctor manages doctor profiles and the per-doctor OPD token
// counter that numbers each day's bookings.
package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Doctor statuses.
const (
	StatusActive   = "active"
	StatusOnLeave  = "on-leave"
	StatusInactive = "inactive"
)

// DefaultSlotDurationMinutes is used when a doctor's OPD schedule does not
// set its own slot length.
const DefaultSlotDurationMinutes = 10

// OPDSchedule describes when a doctor sits in the OPD.
type OPDSchedule struct {
	Days                []string `json:"days"`
	Shift               string   `json:"shift"`
	StartTime           string   `json:"startTime"`
	EndTime             string   `json:"endTime"`
	SlotDurationMinutes int      `json:"slotDuration"`
}

// Doctor maps to the doctors table. The opd_counter_date and opd_last_token
// columns back AllocateToken and are not exposed on the wire.
type Doctor struct {
	ID              uuid.UUID   `json:"id"`
	HospitalID      uuid.UUID   `json:"hospitalId"`
	Name            string      `json:"name"`
	Qualification   string      `json:"qualification"`
	Specialization  string      `json:"specialization"`
	Departments     []string    `json:"departments"`
	OPDSchedule     OPDSchedule `json:"opdSchedule"`
	ConsultationFee int         `json:"consultationFee"`
	OnlineEnabled   bool        `json:"onlineEnabled"`
	OnlineFee       int         `json:"onlineFee"`
	OnlineDays      []string    `json:"onlineDays"`
	ExperienceYears int         `json:"experienceYears"`
	Rating          float64     `json:"rating"`
	Status          string      `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// Filter narrows doctor listings.
type Filter struct {
	HospitalID uuid.UUID
	Department string
}
