package doctor

import (
	"context"
	"errors"
	"fmt"
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

// NewRepoPG creates the Postgres-backed doctor repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const doctorCols = `id, hospital_id, name, qualification, specialization, departments,
	opd_days, opd_shift, opd_start_time, opd_end_time, opd_slot_duration,
	consultation_fee, online_enabled, online_fee, online_days,
	experience_years, rating, status, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.HospitalID, &d.Name, &d.Qualification, &d.Specialization, &d.Departments,
		&d.OPDSchedule.Days, &d.OPDSchedule.Shift, &d.OPDSchedule.StartTime, &d.OPDSchedule.EndTime,
		&d.OPDSchedule.SlotDurationMinutes,
		&d.ConsultationFee, &d.OnlineEnabled, &d.OnlineFee, &d.OnlineDays,
		&d.ExperienceYears, &d.Rating, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("doctor not found")
	}
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO doctors (id, hospital_id, name, qualification, specialization, departments,
			opd_days, opd_shift, opd_start_time, opd_end_time, opd_slot_duration,
			consultation_fee, online_enabled, online_fee, online_days,
			experience_years, rating, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING created_at, updated_at`,
		d.ID, d.HospitalID, d.Name, d.Qualification, d.Specialization, d.Departments,
		d.OPDSchedule.Days, d.OPDSchedule.Shift, d.OPDSchedule.StartTime, d.OPDSchedule.EndTime,
		d.OPDSchedule.SlotDurationMinutes,
		d.ConsultationFee, d.OnlineEnabled, d.OnlineFee, d.OnlineDays,
		d.ExperienceYears, d.Rating, d.Status,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.conn(ctx).QueryRow(ctx,
		`SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, d *Doctor) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctors SET name=$2, qualification=$3, specialization=$4, departments=$5,
			opd_days=$6, opd_shift=$7, opd_start_time=$8, opd_end_time=$9, opd_slot_duration=$10,
			consultation_fee=$11, online_enabled=$12, online_fee=$13, online_days=$14,
			experience_years=$15, rating=$16, status=$17, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.Qualification, d.Specialization, d.Departments,
		d.OPDSchedule.Days, d.OPDSchedule.Shift, d.OPDSchedule.StartTime, d.OPDSchedule.EndTime,
		d.OPDSchedule.SlotDurationMinutes,
		d.ConsultationFee, d.OnlineEnabled, d.OnlineFee, d.OnlineDays,
		d.ExperienceYears, d.Rating, d.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("doctor not found")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("doctor not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Doctor, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.HospitalID != uuid.Nil {
		where += fmt.Sprintf(` AND hospital_id = $%d`, idx)
		args = append(args, f.HospitalID)
		idx++
	}
	if f.Department != "" {
		where += fmt.Sprintf(` AND $%d = ANY(departments)`, idx)
		args = append(args, f.Department)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctors`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + doctorCols + ` FROM doctors` + where +
		fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

// AllocateToken resets the counter on a date change and increments it in a
// single statement, so two concurrent bookings can never observe the same
// token.
func (r *repoPG) AllocateToken(ctx context.Context, doctorID uuid.UUID, date time.Time) (int, error) {
	var token int
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE doctors SET
			opd_last_token = CASE
				WHEN opd_counter_date IS DISTINCT FROM $2::date THEN 1
				ELSE opd_last_token + 1
			END,
			opd_counter_date = $2::date,
			updated_at = NOW()
		WHERE id = $1
		RETURNING opd_last_token`,
		doctorID, date).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperr.NotFound("doctor not found")
	}
	if err != nil {
		return 0, err
	}
	return token, nil
}
