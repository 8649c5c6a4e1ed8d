package doctor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/careq/careq/pkg/apperr"
)

var validStatuses = map[string]bool{
	StatusActive:   true,
	StatusOnLeave:  true,
	StatusInactive: true,
}

// Service applies doctor business rules on top of the repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, d *Doctor) error {
	if d.Name == "" {
		return apperr.Validation("doctor name is required")
	}
	if d.HospitalID == uuid.Nil {
		return apperr.Validation("hospital id is required")
	}
	if d.Status == "" {
		d.Status = StatusActive
	}
	if !validStatuses[d.Status] {
		return apperr.Validation("invalid doctor status: %s", d.Status)
	}
	if d.OPDSchedule.SlotDurationMinutes <= 0 {
		d.OPDSchedule.SlotDurationMinutes = DefaultSlotDurationMinutes
	}
	if d.OnlineEnabled && d.OnlineFee <= 0 {
		return apperr.Validation("online consultation requires a fee")
	}
	return s.repo.Create(ctx, d)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, d *Doctor) error {
	if d.Status != "" && !validStatuses[d.Status] {
		return apperr.Validation("invalid doctor status: %s", d.Status)
	}
	if d.OPDSchedule.SlotDurationMinutes <= 0 {
		d.OPDSchedule.SlotDurationMinutes = DefaultSlotDurationMinutes
	}
	return s.repo.Update(ctx, d)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Doctor, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

// AllocateToken hands out the next OPD token for the doctor on the given
// booking date.
func (s *Service) AllocateToken(ctx context.Context, doctorID uuid.UUID, date time.Time) (int, error) {
	return s.repo.AllocateToken(ctx, doctorID, date)
}
