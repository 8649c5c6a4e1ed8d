package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careq/careq/internal/platform/db"
	"github.com/careq/careq/pkg/apperr"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG creates the Postgres-backed appointment repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const apptCols = `id, appointment_code, type, status,
	hospital_id, hospital_name, hospital_type, department,
	doctor_id, doctor_name, doctor_qualification,
	schedule_date, time_slot, shift, token_number, queue_position,
	patient_user_id, patient_name, patient_age, patient_gender, patient_phone,
	fee_registration, fee_consultation, fee_total,
	cancelled_by, cancelled_at, cancellation_reason,
	instructions, source, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var cancelledBy, cancellationReason, instructions, source *string
	err := row.Scan(&a.ID, &a.AppointmentCode, &a.Type, &a.Status,
		&a.Hospital.ID, &a.Hospital.Name, &a.Hospital.Type, &a.Department,
		&a.Doctor.ID, &a.Doctor.Name, &a.Doctor.Qualification,
		&a.Schedule.Date, &a.Schedule.TimeSlot, &a.Schedule.Shift, &a.TokenNumber, &a.QueuePosition,
		&a.Patient.UserID, &a.Patient.Name, &a.Patient.Age, &a.Patient.Gender, &a.Patient.Phone,
		&a.Fees.Registration, &a.Fees.Consultation, &a.Fees.Total,
		&cancelledBy, &a.CancelledAt, &cancellationReason,
		&instructions, &source, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("appointment not found")
	}
	if err != nil {
		return nil, err
	}
	if cancelledBy != nil {
		a.CancelledBy = *cancelledBy
	}
	if cancellationReason != nil {
		a.CancellationReason = *cancellationReason
	}
	if instructions != nil {
		a.Instructions = *instructions
	}
	if source != nil {
		a.Source = *source
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (id, appointment_code, type, status,
			hospital_id, hospital_name, hospital_type, department,
			doctor_id, doctor_name, doctor_qualification,
			schedule_date, time_slot, shift, token_number, queue_position,
			patient_user_id, patient_name, patient_age, patient_gender, patient_phone,
			fee_registration, fee_consultation, fee_total, instructions, source)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,
			$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)
		RETURNING created_at, updated_at`,
		a.ID, a.AppointmentCode, a.Type, a.Status,
		a.Hospital.ID, a.Hospital.Name, a.Hospital.Type, a.Department,
		a.Doctor.ID, a.Doctor.Name, a.Doctor.Qualification,
		a.Schedule.Date, a.Schedule.TimeSlot, a.Schedule.Shift, a.TokenNumber, a.QueuePosition,
		a.Patient.UserID, a.Patient.Name, a.Patient.Age, a.Patient.Gender, a.Patient.Phone,
		a.Fees.Registration, a.Fees.Consultation, a.Fees.Total, a.Instructions, a.Source,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE patient_user_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `SELECT `+apptCols+` FROM appointments
		WHERE patient_user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) CountOPDForDay(ctx context.Context, patientID, hospitalID uuid.UUID, day time.Time) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE patient_user_id = $1 AND hospital_id = $2 AND schedule_date = $3::date
			AND type = $4 AND status <> $5`,
		patientID, hospitalID, day, TypeOPD, StatusCancelled).Scan(&n)
	return n, err
}

func (r *repoPG) OnlineSlotTaken(ctx context.Context, doctorID uuid.UUID, day time.Time, timeSlot string) (bool, error) {
	var taken bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1 AND schedule_date = $2::date AND time_slot = $3
				AND type = $4 AND status <> $5)`,
		doctorID, day, timeSlot, TypeOnline, StatusCancelled).Scan(&taken)
	return taken, err
}

func (r *repoPG) CountForHospitalDay(ctx context.Context, hospitalID uuid.UUID, day time.Time) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE hospital_id = $1 AND schedule_date = $2::date AND status = $3`,
		hospitalID, day, StatusBooked).Scan(&n)
	return n, err
}

func (r *repoPG) Cancel(ctx context.Context, a *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET status=$2, cancelled_by=$3, cancelled_at=$4,
			cancellation_reason=$5, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Status, a.CancelledBy, a.CancelledAt, a.CancellationReason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment not found")
	}
	return nil
}
