// Package record manages medical records written after consultations and
// the report files hospitals attach to them.
package record

import (
	"time"

	"github.com/google/uuid"
)

// HospitalRef names the hospital on a record.
type HospitalRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// DoctorRef names the doctor on a record.
type DoctorRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Report is an uploaded report file attached to a record.
type Report struct {
	FileName   string     `json:"fileName,omitempty"`
	FileURL    string     `json:"fileUrl,omitempty"`
	UploadedAt *time.Time `json:"uploadedAt,omitempty"`
}

// MedicalRecord maps to the medical_records table.
type MedicalRecord struct {
	ID             uuid.UUID   `json:"id"`
	UserID         uuid.UUID   `json:"userId"`
	AppointmentID  *uuid.UUID  `json:"appointmentId,omitempty"`
	AppointmentRef string      `json:"appointmentRef,omitempty"`
	Hospital       HospitalRef `json:"hospital"`
	Doctor         DoctorRef   `json:"doctor"`
	VisitDate      time.Time   `json:"visitDate"`
	Diagnosis      string      `json:"diagnosis"`
	Notes          string      `json:"notes,omitempty"`
	Prescription   string      `json:"prescription,omitempty"`
	FollowUpDate   *time.Time  `json:"followUpDate,omitempty"`
	Report         Report      `json:"report"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}
