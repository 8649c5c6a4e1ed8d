// Package hospital manages hospital registration and lookup, including the
// OPD settings the booking and queue flows depend on.
package hospital

import (
	"time"

	"github.com/google/uuid"
)

// Hospital types.
const (
	TypeGovernment = "government"
	TypePrivate    = "private"
)

// DefaultMaxTokensPerDay caps OPD bookings when a hospital did not set its
// own limit.
const DefaultMaxTokensPerDay = 100

// Address is the postal address of a hospital. District and state drive the
// location filters on the search endpoints.
type Address struct {
	Line1    string `db:"address_line1" json:"line1"`
	City     string `db:"address_city" json:"city"`
	District string `db:"address_district" json:"district"`
	State    string `db:"address_state" json:"state"`
	Pincode  string `db:"address_pincode" json:"pincode"`
}

// OPDTimings holds the morning and evening OPD windows as "HH:MM" strings.
type OPDTimings struct {
	MorningStart string `db:"opd_morning_start" json:"morningStart"`
	MorningEnd   string `db:"opd_morning_end" json:"morningEnd"`
	EveningStart string `db:"opd_evening_start" json:"eveningStart"`
	EveningEnd   string `db:"opd_evening_end" json:"eveningEnd"`
}

// Hospital maps to the hospitals table.
type Hospital struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Type            string     `db:"type" json:"type"`
	Email           string     `db:"email" json:"email"`
	Phone           string     `db:"phone" json:"phone"`
	Address         Address    `json:"address"`
	Departments     []string   `db:"departments" json:"departments"`
	OPDAvailable    bool       `db:"opd_available" json:"opdAvailable"`
	OPDTimings      OPDTimings `json:"opdTimings"`
	MaxTokensPerDay int        `db:"opd_max_tokens_per_day" json:"maxTokensPerDay"`
	CreatedBy       *uuid.UUID `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
}

// Filter narrows hospital listings.
type Filter struct {
	State    string
	District string
	Search   string
}
