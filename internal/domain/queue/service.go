package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careq/careq/internal/platform/realtime"
	"github.com/careq/careq/pkg/apperr"
)

// alertDistance is how close (in queue positions) a waiting patient must be
// to the serving position to receive an alert.
const alertDistance = 2

var validItemStatuses = map[string]bool{
	ItemWaiting:   true,
	ItemServing:   true,
	ItemCompleted: true,
}

var validUrgencies = map[string]bool{
	UrgencyNormal:   true,
	UrgencyModerate: true,
	UrgencyCritical: true,
}

// Service runs the live queue. Every mutating operation rebroadcasts the
// full queue snapshot to the queue room.
type Service struct {
	repo      Repository
	broadcast realtime.Broadcaster
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(repo Repository, broadcast realtime.Broadcaster, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		broadcast: broadcast,
		logger:    logger.With().Str("component", "queue").Logger(),
		now:       time.Now,
	}
}

// today returns the current day at midnight UTC, the granularity queues are
// keyed on.
func (s *Service) today() time.Time {
	t := s.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// GetOrCreate returns today's active queue for the doctor, creating an
// empty one when none exists. Calling it twice on the same day returns the
// same queue.
func (s *Service) GetOrCreate(ctx context.Context, hospitalID, doctorID uuid.UUID) (*Queue, error) {
	if hospitalID == uuid.Nil || doctorID == uuid.Nil {
		return nil, apperr.Validation("hospital id and doctor id are required")
	}

	q, err := s.repo.FindActive(ctx, hospitalID, doctorID, s.today())
	if err == nil {
		return q, nil
	}
	if !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}

	q = &Queue{
		HospitalID: hospitalID,
		DoctorID:   doctorID,
		OPDDate:    s.today(),
		Status:     StatusActive,
		Items:      []QueueItem{},
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Get returns the queue with its items ordered by token number.
func (s *Service) Get(ctx context.Context, queueID uuid.UUID) (*Queue, error) {
	return s.repo.GetByID(ctx, queueID)
}

// Join appends a patient to the queue. The estimated wait is the number of
// patients already in the queue times a flat per-patient figure, fixed at
// join time.
func (s *Service) Join(ctx context.Context, queueID, patientID uuid.UUID, urgency string) (*QueueItem, error) {
	if patientID == uuid.Nil {
		return nil, apperr.Validation("patient id is required")
	}
	if urgency == "" {
		urgency = UrgencyNormal
	}
	if !validUrgencies[urgency] {
		return nil, apperr.Validation("invalid urgency: %s", urgency)
	}

	ahead, err := s.repo.CountItems(ctx, queueID)
	if err != nil {
		return nil, err
	}

	token, err := s.repo.NextToken(ctx, queueID)
	if err != nil {
		return nil, err
	}

	item := &QueueItem{
		QueueID:              queueID,
		TokenNumber:          token,
		PatientID:            patientID,
		Urgency:              urgency,
		Status:               ItemWaiting,
		EstimatedWaitMinutes: ahead * WaitPerPatientMinutes,
	}
	if err := s.repo.AddItem(ctx, item); err != nil {
		return nil, err
	}

	s.rebroadcast(ctx, queueID)
	return item, nil
}

// AdvanceNext completes the serving item and promotes the first waiting
// item. The snapshot is rebroadcast to the room even when no item changed,
// so displays refresh on every advance.
func (s *Service) AdvanceNext(ctx context.Context, queueID uuid.UUID) error {
	q, err := s.repo.GetByID(ctx, queueID)
	if err != nil {
		return err
	}

	servingToken := 0
	nextToken := 0
	for _, it := range q.Items {
		switch {
		case it.Status == ItemServing && servingToken == 0:
			servingToken = it.TokenNumber
		case it.Status == ItemWaiting && nextToken == 0:
			nextToken = it.TokenNumber
		}
	}

	if nextToken == 0 {
		if servingToken != 0 {
			if err := s.repo.UpdateItemStatus(ctx, queueID, servingToken, ItemCompleted); err != nil {
				return err
			}
		}
		s.rebroadcast(ctx, queueID)
		return nil
	}

	if err := s.repo.AdvanceItems(ctx, queueID, servingToken, nextToken); err != nil {
		return err
	}

	s.rebroadcast(ctx, queueID)
	return nil
}

// SetItemStatus overwrites an item's status. Transitions are not checked;
// desk staff use this to correct the board.
func (s *Service) SetItemStatus(ctx context.Context, queueID uuid.UUID, tokenNumber int, status string) error {
	if !validItemStatuses[status] {
		return apperr.Validation("invalid status: %s", status)
	}
	if err := s.repo.UpdateItemStatus(ctx, queueID, tokenNumber, status); err != nil {
		return err
	}
	s.rebroadcast(ctx, queueID)
	return nil
}

// CheckAlerts pushes an alert to the queue room for every waiting patient
// within alertDistance positions of the serving one.
func (s *Service) CheckAlerts(ctx context.Context, queueID uuid.UUID) error {
	q, err := s.repo.GetByID(ctx, queueID)
	if err != nil {
		return err
	}

	servingIdx := -1
	for i, it := range q.Items {
		if it.Status == ItemServing {
			servingIdx = i
			break
		}
	}

	for i, it := range q.Items {
		if it.Status != ItemWaiting {
			continue
		}
		if i-servingIdx <= alertDistance {
			s.broadcast.Broadcast(realtime.QueueRoom(queueID), realtime.EventAlert, Alert{
				TokenNumber: it.TokenNumber,
				Message:     fmt.Sprintf("Token %d, your turn is near. Please reach the OPD counter.", it.TokenNumber),
			})
		}
	}
	return nil
}

// CloseStale closes active queues left over from past days. Run by the
// nightly job.
func (s *Service) CloseStale(ctx context.Context) (int64, error) {
	n, err := s.repo.CloseBefore(ctx, s.today())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info().Int64("closed", n).Msg("closed stale queues")
	}
	return n, nil
}

// rebroadcast pushes the full queue snapshot to the queue room. Failures
// are logged, never surfaced; delivery is best effort.
func (s *Service) rebroadcast(ctx context.Context, queueID uuid.UUID) {
	q, err := s.repo.GetByID(ctx, queueID)
	if err != nil {
		s.logger.Error().Err(err).Str("queue_id", queueID.String()).Msg("failed to load queue for broadcast")
		return
	}
	s.broadcast.Broadcast(realtime.QueueRoom(queueID), realtime.EventQueueUpdate, q)
}
