package record

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careq/careq/internal/domain/notification"
	"github.com/careq/careq/pkg/apperr"
)

// Notifier pushes a notification to a user. Satisfied by
// notification.Service.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message, typ string) (*notification.Notification, error)
}

// Service manages medical records. Report uploads notify the patient.
type Service struct {
	repo     Repository
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier, now: time.Now}
}

// Create writes a consultation record for a patient.
func (s *Service) Create(ctx context.Context, rec *MedicalRecord) error {
	if rec.UserID == uuid.Nil {
		return apperr.Validation("user id is required")
	}
	if rec.Diagnosis == "" {
		return apperr.Validation("diagnosis is required")
	}
	if rec.VisitDate.IsZero() {
		rec.VisitDate = s.now().UTC()
	}
	return s.repo.Create(ctx, rec)
}

// Get returns a record, restricted to its owner unless ownerID is nil
// (staff access).
func (s *Service) Get(ctx context.Context, id, ownerID uuid.UUID) (*MedicalRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ownerID != uuid.Nil && rec.UserID != ownerID {
		return nil, apperr.NotFound("medical record not found")
	}
	return rec, nil
}

// ListMine returns the patient's records, most recent visit first.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// UploadReport attaches a report file to a record and notifies the patient.
// The notification is best effort: its failure does not fail the upload.
func (s *Service) UploadReport(ctx context.Context, id uuid.UUID, fileName, fileURL string) (*MedicalRecord, error) {
	if fileName == "" || fileURL == "" {
		return nil, apperr.Validation("file name and url are required")
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	report := Report{FileName: fileName, FileURL: fileURL, UploadedAt: &now}
	if err := s.repo.SetReport(ctx, id, report); err != nil {
		return nil, err
	}
	rec.Report = report

	_, _ = s.notifier.Notify(ctx, rec.UserID,
		"Report uploaded",
		fmt.Sprintf("A new report (%s) from %s is available in your records.", fileName, rec.Hospital.Name),
		notification.TypeReport)

	return rec, nil
}
