package record

import (
	"context"
	"errors"

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

// NewRepoPG creates the Postgres-backed medical record repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const recordCols = `id, user_id, appointment_id, appointment_ref,
	hospital_id, hospital_name, doctor_id, doctor_name,
	visit_date, diagnosis, notes, prescription, follow_up_date,
	report_file_name, report_file_url, report_uploaded_at,
	created_at, updated_at`

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var rec MedicalRecord
	var appointmentRef, notes, prescription, fileName, fileURL *string
	err := row.Scan(&rec.ID, &rec.UserID, &rec.AppointmentID, &appointmentRef,
		&rec.Hospital.ID, &rec.Hospital.Name, &rec.Doctor.ID, &rec.Doctor.Name,
		&rec.VisitDate, &rec.Diagnosis, &notes, &prescription, &rec.FollowUpDate,
		&fileName, &fileURL, &rec.Report.UploadedAt,
		&rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("medical record not found")
	}
	if err != nil {
		return nil, err
	}
	if appointmentRef != nil {
		rec.AppointmentRef = *appointmentRef
	}
	if notes != nil {
		rec.Notes = *notes
	}
	if prescription != nil {
		rec.Prescription = *prescription
	}
	if fileName != nil {
		rec.Report.FileName = *fileName
	}
	if fileURL != nil {
		rec.Report.FileURL = *fileURL
	}
	return &rec, nil
}

func (r *repoPG) Create(ctx context.Context, rec *MedicalRecord) error {
	rec.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medical_records (id, user_id, appointment_id, appointment_ref,
			hospital_id, hospital_name, doctor_id, doctor_name,
			visit_date, diagnosis, notes, prescription, follow_up_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at, updated_at`,
		rec.ID, rec.UserID, rec.AppointmentID, rec.AppointmentRef,
		rec.Hospital.ID, rec.Hospital.Name, rec.Doctor.ID, rec.Doctor.Name,
		rec.VisitDate, rec.Diagnosis, rec.Notes, rec.Prescription, rec.FollowUpDate,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM medical_records WHERE id = $1`, id))
}

func (r *repoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medical_records WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `SELECT `+recordCols+` FROM medical_records
		WHERE user_id = $1 ORDER BY visit_date DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*MedicalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}

func (r *repoPG) SetReport(ctx context.Context, id uuid.UUID, report Report) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_records SET report_file_name=$2, report_file_url=$3,
			report_uploaded_at=$4, updated_at=NOW()
		WHERE id = $1`,
		id, report.FileName, report.FileURL, report.UploadedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("medical record not found")
	}
	return nil
}
