package doctor

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/careq/careq/pkg/apperr"
)

// mockRepo is an in-memory Repository with a day counter per doctor.
type mockRepo struct {
	doctors  map[uuid.UUID]*Doctor
	counters map[uuid.UUID]*dayCounter
}

type dayCounter struct {
	date  string
	token int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		doctors:  make(map[uuid.UUID]*Doctor),
		counters: make(map[uuid.UUID]*dayCounter),
	}
}

func (m *mockRepo) Create(_ context.Context, d *Doctor) error {
	d.ID = uuid.New()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, apperr.NotFound("doctor not found")
	}
	return d, nil
}

func (m *mockRepo) Update(_ context.Context, d *Doctor) error {
	if _, ok := m.doctors[d.ID]; !ok {
		return apperr.NotFound("doctor not found")
	}
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.doctors[id]; !ok {
		return apperr.NotFound("doctor not found")
	}
	delete(m.doctors, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Doctor, int, error) {
	var items []*Doctor
	for _, d := range m.doctors {
		if f.HospitalID != uuid.Nil && d.HospitalID != f.HospitalID {
			continue
		}
		items = append(items, d)
	}
	return items, len(items), nil
}

func (m *mockRepo) AllocateToken(_ context.Context, doctorID uuid.UUID, date time.Time) (int, error) {
	if _, ok := m.doctors[doctorID]; !ok {
		return 0, apperr.NotFound("doctor not found")
	}
	day := date.Format("2006-01-02")
	c, ok := m.counters[doctorID]
	if !ok || c.date != day {
		c = &dayCounter{date: day}
		m.counters[doctorID] = c
	}
	c.token++
	return c.token, nil
}

func validDoctor() *Doctor {
	return &Doctor{
		HospitalID:      uuid.New(),
		Name:            "Dr. Meena Kumari",
		Qualification:   "MBBS, MD",
		Specialization:  "General Medicine",
		ConsultationFee: 200,
	}
}

func TestService_CreateDefaults(t *testing.T) {
	svc := NewService(newMockRepo())

	d := validDoctor()
	if err := svc.Create(context.Background(), d); err != nil {
		t.Fatalf("create: %v", err)
	}

	if d.Status != StatusActive {
		t.Fatalf("expected default status %s, got %s", StatusActive, d.Status)
	}
	if d.OPDSchedule.SlotDurationMinutes != DefaultSlotDurationMinutes {
		t.Fatalf("expected default slot duration, got %d", d.OPDSchedule.SlotDurationMinutes)
	}
}

func TestService_CreateValidation(t *testing.T) {
	svc := NewService(newMockRepo())

	cases := []struct {
		name   string
		mutate func(*Doctor)
	}{
		{"missing name", func(d *Doctor) { d.Name = "" }},
		{"missing hospital", func(d *Doctor) { d.HospitalID = uuid.Nil }},
		{"bad status", func(d *Doctor) { d.Status = "retired" }},
		{"online without fee", func(d *Doctor) { d.OnlineEnabled = true; d.OnlineFee = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDoctor()
			tc.mutate(d)
			if err := svc.Create(context.Background(), d); !apperr.IsKind(err, apperr.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestService_AllocateTokenSequence(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	d := validDoctor()
	if err := svc.Create(context.Background(), d); err != nil {
		t.Fatalf("create: %v", err)
	}

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	for want := 1; want <= 4; want++ {
		got, err := svc.AllocateToken(context.Background(), d.ID, day)
		if err != nil {
			t.Fatalf("allocate: %v", err)
		}
		if got != want {
			t.Fatalf("expected token %d, got %d", want, got)
		}
	}
}

func TestService_AllocateTokenResetsAcrossDates(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	d := validDoctor()
	if err := svc.Create(context.Background(), d); err != nil {
		t.Fatalf("create: %v", err)
	}

	day1 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	for i := 0; i < 3; i++ {
		if _, err := svc.AllocateToken(context.Background(), d.ID, day1); err != nil {
			t.Fatalf("allocate day1: %v", err)
		}
	}

	got, err := svc.AllocateToken(context.Background(), d.ID, day2)
	if err != nil {
		t.Fatalf("allocate day2: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected counter reset to 1 on new date, got %d", got)
	}
}

func TestService_AllocateTokenUnknownDoctor(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.AllocateToken(context.Background(), uuid.New(), time.Now())
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
