// Package addons provides the registry of additional services that can be
// attached to subscriptions. Entries are created once and never mutated.
package addons

import (
	"context"
	"fmt"

	"github.com/openfleet/subscription-service/internal/domain"
)

// Service implements additional-service registry logic.
type Service struct {
	repo Repository
}

// NewService creates a new registry service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new additional service.
func (s *Service) Create(ctx context.Context, addon *domain.AdditionalService) error {
	if err := s.repo.Create(ctx, addon); err != nil {
		return fmt.Errorf("create additional service: %w", err)
	}
	return nil
}

// GetByID returns the additional service with the given id.
// Returns ErrNotFound when absent.
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.AdditionalService, error) {
	return s.repo.GetByID(ctx, id)
}
