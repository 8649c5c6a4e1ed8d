package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence boundary for appointments.
//
// CountOPDForDay counts a patient's non-cancelled OPD appointments at a
// hospital on a day. OnlineSlotTaken reports whether a non-cancelled online
// appointment already occupies the (doctor, date, slot) triple.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	CountOPDForDay(ctx context.Context, patientID, hospitalID uuid.UUID, day time.Time) (int, error)
	OnlineSlotTaken(ctx context.Context, doctorID uuid.UUID, day time.Time, timeSlot string) (bool, error)
	CountForHospitalDay(ctx context.Context, hospitalID uuid.UUID, day time.Time) (int, error)
	Cancel(ctx context.Context, a *Appointment) error
}
