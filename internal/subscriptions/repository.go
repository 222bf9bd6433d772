package subscriptions

import (
	"context"

	"github.com/openfleet/subscription-service/internal/domain"
)

// Repository defines the interface for subscription data operations.
type Repository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	GetByID(ctx context.Context, id int64) (*domain.Subscription, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Subscription, error)
	ListAll(ctx context.Context) ([]domain.Subscription, error)
	SetActive(ctx context.Context, id int64, active bool) error
}
