package queue

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

// NewRepoPG creates the Postgres-backed queue repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const queueCols = `id, hospital_id, doctor_id, opd_date, current_token, status, created_at, updated_at`

func scanQueue(row pgx.Row) (*Queue, error) {
	var q Queue
	err := row.Scan(&q.ID, &q.HospitalID, &q.DoctorID, &q.OPDDate,
		&q.CurrentToken, &q.Status, &q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("queue not found")
	}
	return &q, err
}

func (r *repoPG) Create(ctx context.Context, q *Queue) error {
	q.ID = uuid.New()
	if q.Status == "" {
		q.Status = StatusActive
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO queues (id, hospital_id, doctor_id, opd_date, current_token, status)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`,
		q.ID, q.HospitalID, q.DoctorID, q.OPDDate, q.CurrentToken, q.Status,
	).Scan(&q.CreatedAt, &q.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Queue, error) {
	q, err := scanQueue(r.conn(ctx).QueryRow(ctx,
		`SELECT `+queueCols+` FROM queues WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (r *repoPG) FindActive(ctx context.Context, hospitalID, doctorID uuid.UUID, day time.Time) (*Queue, error) {
	q, err := scanQueue(r.conn(ctx).QueryRow(ctx, `
		SELECT `+queueCols+` FROM queues
		WHERE hospital_id = $1 AND doctor_id = $2 AND opd_date = $3::date AND status = $4`,
		hospitalID, doctorID, day, StatusActive))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (r *repoPG) loadItems(ctx context.Context, q *Queue) error {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, queue_id, token_number, patient_id, urgency, status,
			estimated_wait_minutes, created_at, updated_at
		FROM queue_items WHERE queue_id = $1 ORDER BY token_number ASC`, q.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	q.Items = []QueueItem{}
	for rows.Next() {
		var it QueueItem
		if err := rows.Scan(&it.ID, &it.QueueID, &it.TokenNumber, &it.PatientID,
			&it.Urgency, &it.Status, &it.EstimatedWaitMinutes, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return err
		}
		q.Items = append(q.Items, it)
	}
	return rows.Err()
}

// NextToken increments current_token in a single statement so concurrent
// joins receive distinct tokens.
func (r *repoPG) NextToken(ctx context.Context, queueID uuid.UUID) (int, error) {
	var token int
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE queues SET current_token = current_token + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING current_token`, queueID).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperr.NotFound("queue not found")
	}
	if err != nil {
		return 0, err
	}
	return token, nil
}

func (r *repoPG) AddItem(ctx context.Context, item *QueueItem) error {
	item.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO queue_items (id, queue_id, token_number, patient_id, urgency, status, estimated_wait_minutes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		item.ID, item.QueueID, item.TokenNumber, item.PatientID,
		item.Urgency, item.Status, item.EstimatedWaitMinutes,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
}

func (r *repoPG) CountItems(ctx context.Context, queueID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM queue_items WHERE queue_id = $1`, queueID).Scan(&n)
	return n, err
}

func (r *repoPG) UpdateItemStatus(ctx context.Context, queueID uuid.UUID, tokenNumber int, status string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE queue_items SET status = $3, updated_at = NOW()
		WHERE queue_id = $1 AND token_number = $2`,
		queueID, tokenNumber, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("token %d not found in queue", tokenNumber)
	}
	return nil
}

// AdvanceItems completes the currently serving item (when servingToken > 0)
// and promotes nextToken to serving, atomically.
func (r *repoPG) AdvanceItems(ctx context.Context, queueID uuid.UUID, servingToken, nextToken int) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		if servingToken > 0 {
			if err := r.UpdateItemStatus(ctx, queueID, servingToken, ItemCompleted); err != nil {
				return err
			}
		}
		return r.UpdateItemStatus(ctx, queueID, nextToken, ItemServing)
	})
}

func (r *repoPG) CloseBefore(ctx context.Context, day time.Time) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE queues SET status = $1, updated_at = NOW()
		WHERE status = $2 AND opd_date < $3::date`,
		StatusClosed, StatusActive, day)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
