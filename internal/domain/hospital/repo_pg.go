package hospital

import (
	"context"
	"errors"
	"fmt"

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

// NewRepoPG creates the Postgres-backed hospital repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const hospitalCols = `id, name, type, email, phone,
	address_line1, address_city, address_district, address_state, address_pincode,
	departments, opd_available, opd_morning_start, opd_morning_end,
	opd_evening_start, opd_evening_end, opd_max_tokens_per_day,
	created_by, created_at, updated_at`

func scanHospital(row pgx.Row) (*Hospital, error) {
	var h Hospital
	err := row.Scan(&h.ID, &h.Name, &h.Type, &h.Email, &h.Phone,
		&h.Address.Line1, &h.Address.City, &h.Address.District, &h.Address.State, &h.Address.Pincode,
		&h.Departments, &h.OPDAvailable, &h.OPDTimings.MorningStart, &h.OPDTimings.MorningEnd,
		&h.OPDTimings.EveningStart, &h.OPDTimings.EveningEnd, &h.MaxTokensPerDay,
		&h.CreatedBy, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("hospital not found")
	}
	return &h, err
}

func (r *repoPG) Create(ctx context.Context, h *Hospital) error {
	h.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO hospitals (id, name, type, email, phone,
			address_line1, address_city, address_district, address_state, address_pincode,
			departments, opd_available, opd_morning_start, opd_morning_end,
			opd_evening_start, opd_evening_end, opd_max_tokens_per_day, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING created_at, updated_at`,
		h.ID, h.Name, h.Type, h.Email, h.Phone,
		h.Address.Line1, h.Address.City, h.Address.District, h.Address.State, h.Address.Pincode,
		h.Departments, h.OPDAvailable, h.OPDTimings.MorningStart, h.OPDTimings.MorningEnd,
		h.OPDTimings.EveningStart, h.OPDTimings.EveningEnd, h.MaxTokensPerDay, h.CreatedBy,
	).Scan(&h.CreatedAt, &h.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	return scanHospital(r.conn(ctx).QueryRow(ctx,
		`SELECT `+hospitalCols+` FROM hospitals WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, h *Hospital) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE hospitals SET name=$2, type=$3, email=$4, phone=$5,
			address_line1=$6, address_city=$7, address_district=$8, address_state=$9, address_pincode=$10,
			departments=$11, opd_available=$12, opd_morning_start=$13, opd_morning_end=$14,
			opd_evening_start=$15, opd_evening_end=$16, opd_max_tokens_per_day=$17, updated_at=NOW()
		WHERE id = $1`,
		h.ID, h.Name, h.Type, h.Email, h.Phone,
		h.Address.Line1, h.Address.City, h.Address.District, h.Address.State, h.Address.Pincode,
		h.Departments, h.OPDAvailable, h.OPDTimings.MorningStart, h.OPDTimings.MorningEnd,
		h.OPDTimings.EveningStart, h.OPDTimings.EveningEnd, h.MaxTokensPerDay)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("hospital not found")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM hospitals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("hospital not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Hospital, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.State != "" {
		where += fmt.Sprintf(` AND address_state = $%d`, idx)
		args = append(args, f.State)
		idx++
	}
	if f.District != "" {
		where += fmt.Sprintf(` AND address_district = $%d`, idx)
		args = append(args, f.District)
		idx++
	}
	if f.Search != "" {
		where += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM hospitals`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + hospitalCols + ` FROM hospitals` + where +
		fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Hospital
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, h)
	}
	return items, total, rows.Err()
}
