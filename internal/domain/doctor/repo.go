package doctor

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence boundary for doctors.
//
// AllocateToken advances the doctor's OPD day counter: when the stored
// counter date differs from date the counter restarts at 1, otherwise it
// increments. The statement is atomic, so concurrent bookings receive
// distinct tokens. Tokens are never reused; cancelling a booking does not
// return its token.
type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Doctor, int, error)
	AllocateToken(ctx context.Context, doctorID uuid.UUID, date time.Time) (int, error)
}
