package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careq/careq/internal/domain/doctor"
	"github.com/careq/careq/internal/domain/hospital"
	"github.com/careq/careq/pkg/apperr"
)

// HospitalDirectory is the slice of the hospital domain the orchestrator
// needs. Satisfied by hospital.Repository.
type HospitalDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*hospital.Hospital, error)
}

// DoctorDirectory is the slice of the doctor domain the orchestrator needs.
// Satisfied by doctor.Repository.
type DoctorDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error)
	AllocateToken(ctx context.Context, doctorID uuid.UUID, date time.Time) (int, error)
}

// BookOPDRequest is the inbound payload for an OPD booking.
type BookOPDRequest struct {
	HospitalID   uuid.UUID       `json:"hospitalId"`
	DoctorID     uuid.UUID       `json:"doctorId"`
	Department   string          `json:"department"`
	Schedule     Schedule        `json:"schedule"`
	Patient      PatientSnapshot `json:"patient"`
	Fees         Fees            `json:"fees"`
	Instructions string          `json:"instructions"`
	Source       string          `json:"source"`
}

// BookOnlineRequest is the inbound payload for an online consultation.
type BookOnlineRequest struct {
	DoctorID uuid.UUID       `json:"doctorId"`
	Schedule Schedule        `json:"schedule"`
	Patient  PatientSnapshot `json:"patient"`
	Source   string          `json:"source"`
}

// Service orchestrates appointment booking across the hospital, doctor and
// appointment stores.
type Service struct {
	repo      Repository
	hospitals HospitalDirectory
	doctors   DoctorDirectory
	now       func() time.Time
}

func NewService(repo Repository, hospitals HospitalDirectory, doctors DoctorDirectory) *Service {
	return &Service{
		repo:      repo,
		hospitals: hospitals,
		doctors:   doctors,
		now:       time.Now,
	}
}

// newCode builds an appointment code from the booking instant, e.g.
// "OPD1710051234567".
func (s *Service) newCode(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, s.now().UnixMilli())
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BookOPD books an outpatient visit: validates the request, enforces the
// per-day booking cap, allocates the doctor's next token and persists the
// appointment with hospital, doctor and patient snapshots.
func (s *Service) BookOPD(ctx context.Context, req BookOPDRequest) (*Appointment, error) {
	if req.Schedule.Date.IsZero() {
		return nil, apperr.Validation("schedule date is required")
	}
	if req.Schedule.TimeSlot == "" {
		return nil, apperr.Validation("time slot is required")
	}
	if req.Patient.Name == "" {
		return nil, apperr.Validation("patient name is required")
	}
	if req.Patient.UserID == uuid.Nil {
		return nil, apperr.Validation("patient user id is required")
	}

	hosp, err := s.hospitals.GetByID(ctx, req.HospitalID)
	if err != nil {
		return nil, err
	}
	doc, err := s.doctors.GetByID(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	bookingDay := day(req.Schedule.Date)

	existing, err := s.repo.CountOPDForDay(ctx, req.Patient.UserID, req.HospitalID, bookingDay)
	if err != nil {
		return nil, err
	}
	if existing >= MaxOPDBookingsPerDay {
		return nil, apperr.Conflict("you already have %d OPD bookings at this hospital for that day", MaxOPDBookingsPerDay)
	}

	token, err := s.doctors.AllocateToken(ctx, req.DoctorID, bookingDay)
	if err != nil {
		return nil, err
	}

	fees := req.Fees
	if fees.Total == 0 {
		fees.Total = fees.Registration + fees.Consultation
	}

	appt := &Appointment{
		AppointmentCode: s.newCode("OPD"),
		Type:            TypeOPD,
		Status:          StatusBooked,
		Hospital:        HospitalSnapshot{ID: hosp.ID, Name: hosp.Name, Type: hosp.Type},
		Department:      req.Department,
		Doctor:          DoctorSnapshot{ID: doc.ID, Name: doc.Name, Qualification: doc.Qualification},
		Schedule:        Schedule{Date: bookingDay, TimeSlot: req.Schedule.TimeSlot, Shift: req.Schedule.Shift},
		TokenNumber:     token,
		QueuePosition:   token,
		Patient:         req.Patient,
		Fees:            fees,
		Instructions:    req.Instructions,
		Source:          req.Source,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// BookOnline books an online consultation. The doctor must offer online
// consultations; a slot already taken by a non-cancelled online booking is
// a conflict, but a cancelled booking frees its slot.
func (s *Service) BookOnline(ctx context.Context, req BookOnlineRequest) (*Appointment, error) {
	if req.Schedule.Date.IsZero() || req.Schedule.TimeSlot == "" {
		return nil, apperr.Validation("schedule date and time slot are required")
	}
	if req.Patient.UserID == uuid.Nil || req.Patient.Name == "" {
		return nil, apperr.Validation("patient details are required")
	}

	doc, err := s.doctors.GetByID(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doc.OnlineEnabled || doc.OnlineFee <= 0 {
		return nil, apperr.Validation("doctor does not offer online consultations")
	}

	hosp, err := s.hospitals.GetByID(ctx, doc.HospitalID)
	if err != nil {
		return nil, err
	}

	bookingDay := day(req.Schedule.Date)

	taken, err := s.repo.OnlineSlotTaken(ctx, req.DoctorID, bookingDay, req.Schedule.TimeSlot)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("this slot is already booked")
	}

	appt := &Appointment{
		AppointmentCode: s.newCode("ONL"),
		Type:            TypeOnline,
		Status:          StatusBooked,
		Hospital:        HospitalSnapshot{ID: hosp.ID, Name: hosp.Name, Type: hosp.Type},
		Department:      doc.Specialization,
		Doctor:          DoctorSnapshot{ID: doc.ID, Name: doc.Name, Qualification: doc.Qualification},
		Schedule:        Schedule{Date: bookingDay, TimeSlot: req.Schedule.TimeSlot, Shift: req.Schedule.Shift},
		Patient:         req.Patient,
		Fees:            Fees{Consultation: doc.OnlineFee, Total: doc.OnlineFee},
		Source:          req.Source,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// AvailableSlots lists the bookable slots for a doctor on a date, derived
// from the doctor's OPD window and slot duration.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]Slot, error) {
	doc, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	start, err := time.Parse("15:04", doc.OPDSchedule.StartTime)
	if err != nil {
		start, _ = time.Parse("15:04", "09:00")
	}
	end, err := time.Parse("15:04", doc.OPDSchedule.EndTime)
	if err != nil {
		end, _ = time.Parse("15:04", "13:00")
	}
	step := time.Duration(doc.OPDSchedule.SlotDurationMinutes) * time.Minute
	if step <= 0 {
		step = time.Duration(doctor.DefaultSlotDurationMinutes) * time.Minute
	}

	var slots []Slot
	for t := start; t.Before(end); t = t.Add(step) {
		slot := fmt.Sprintf("%s-%s", t.Format("15:04"), t.Add(step).Format("15:04"))
		taken, err := s.repo.OnlineSlotTaken(ctx, doctorID, day(date), slot)
		if err != nil {
			return nil, err
		}
		slots = append(slots, Slot{
			TimeSlot:  slot,
			Shift:     doc.OPDSchedule.Shift,
			Available: !taken,
		})
	}
	return slots, nil
}

// MyAppointments lists the patient's appointments, newest first.
func (s *Service) MyAppointments(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// Get returns an appointment, restricted to its owner. Non-owners get
// NotFound rather than confirmation that the appointment exists.
func (s *Service) Get(ctx context.Context, id, patientID uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patientID != uuid.Nil && appt.Patient.UserID != patientID {
		return nil, apperr.NotFound("appointment not found")
	}
	return appt, nil
}

// Cancel cancels an appointment on the owner's behalf. The OPD token is not
// returned to the pool.
func (s *Service) Cancel(ctx context.Context, id, patientID uuid.UUID, cancelledBy, reason string) (*Appointment, error) {
	appt, err := s.Get(ctx, id, patientID)
	if err != nil {
		return nil, err
	}
	if appt.Status == StatusCancelled {
		return nil, apperr.Conflict("appointment is already cancelled")
	}

	if cancelledBy == "" {
		cancelledBy = CancelledByUser
	}
	now := s.now().UTC()
	appt.Status = StatusCancelled
	appt.CancelledBy = cancelledBy
	appt.CancelledAt = &now
	appt.CancellationReason = reason

	if err := s.repo.Cancel(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// CountForHospitalDay counts a hospital's booked appointments for a day.
// Feeds the crowd classifier. Unknown hospitals are NotFound so the crowd
// broadcast is suppressed rather than reporting an empty LOW reading.
func (s *Service) CountForHospitalDay(ctx context.Context, hospitalID uuid.UUID, date time.Time) (int, error) {
	if _, err := s.hospitals.GetByID(ctx, hospitalID); err != nil {
		return 0, err
	}
	return s.repo.CountForHospitalDay(ctx, hospitalID, day(date))
}
