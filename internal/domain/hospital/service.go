package hospital

import (
	"context"

	"github.com/google/uuid"

	"github.com/careq/careq/pkg/apperr"
)

// Service applies hospital business rules on top of the repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, h *Hospital) error {
	if h.Name == "" {
		return apperr.Validation("hospital name is required")
	}
	if h.Type == "" {
		h.Type = TypePrivate
	}
	if h.Type != TypeGovernment && h.Type != TypePrivate {
		return apperr.Validation("invalid hospital type: %s", h.Type)
	}
	if h.Address.State == "" || h.Address.District == "" {
		return apperr.Validation("address state and district are required")
	}
	if h.MaxTokensPerDay <= 0 {
		h.MaxTokensPerDay = DefaultMaxTokensPerDay
	}
	return s.repo.Create(ctx, h)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, h *Hospital) error {
	if h.Type != "" && h.Type != TypeGovernment && h.Type != TypePrivate {
		return apperr.Validation("invalid hospital type: %s", h.Type)
	}
	if h.MaxTokensPerDay <= 0 {
		h.MaxTokensPerDay = DefaultMaxTokensPerDay
	}
	return s.repo.Update(ctx, h)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Hospital, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}
