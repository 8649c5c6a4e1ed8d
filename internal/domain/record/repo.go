package record

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence boundary for medical records.
type Repository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error)
	SetReport(ctx context.Context, id uuid.UUID, report Report) error
}
