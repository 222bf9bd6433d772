package addons

import (
	"context"
	"errors"

	"github.com/openfleet/subscription-service/internal/domain"
)

// ErrNotFound is returned when a referenced additional service does not exist.
var ErrNotFound = errors.New("additional service not found")

// Repository defines the interface for additional-service data operations.
type Repository interface {
	Create(ctx context.Context, addon *domain.AdditionalService) error
	GetByID(ctx context.Context, id int64) (*domain.AdditionalService, error)
}
