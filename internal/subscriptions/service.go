// Package subscriptions implements the subscription lifecycle: creation
// against the car inventory, enriched listings, and cancellation.
package subscriptions

import (
	"context"
	"errors"
	"fmt"

	"github.com/openfleet/subscription-service/internal/addons"
	"github.com/openfleet/subscription-service/internal/cars"
	"github.com/openfleet/subscription-service/internal/domain"
	"github.com/openfleet/subscription-service/internal/pkg/ctxlog"
)

// Service errors.
var (
	ErrNotFound             = errors.New("subscription not found")
	ErrCarAlreadyRented     = errors.New("car is already rented")
	ErrInvalidDateFormat    = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrNoAdditionalServices = errors.New("additional_service_ids must be a non-empty list")
)

// CarInventory resolves cars and flips their rental state.
type CarInventory interface {
	GetCar(ctx context.Context, carID int64) (*cars.Car, error)
	UpdateStatus(ctx context.Context, carID int64) error
}

// ProfileReader fetches the authenticated customer's profile using the
// forwarded bearer token.
type ProfileReader interface {
	GetProfile(ctx context.Context, bearerToken string) (*domain.CustomerProfile, error)
}

// AddonResolver looks up additional services in the local registry.
type AddonResolver interface {
	GetByID(ctx context.Context, id int64) (*domain.AdditionalService, error)
}

// Service implements subscription business logic.
type Service struct {
	repo      Repository
	addons    AddonResolver
	cars      CarInventory
	customers ProfileReader
}

// NewService creates a new subscription service.
func NewService(repo Repository, addonResolver AddonResolver, carInventory CarInventory, profiles ProfileReader) *Service {
	return &Service{
		repo:      repo,
		addons:    addonResolver,
		cars:      carInventory,
		customers: profiles,
	}
}

// CreateInput holds data for creating a subscription. CustomerID comes from
// the caller's verified identity, never from the request body.
type CreateInput struct {
	CarID                int64
	AdditionalServiceIDs []int64
	StartDate            string
	EndDate              string
	Status               *bool
}

// Create validates the input against the car inventory and the local
// registry, marks the car rented, and persists the subscription. Nothing is
// persisted and no remote state is changed if any validation step fails.
func (s *Service) Create(ctx context.Context, customerID int64, input CreateInput) (*domain.Subscription, error) {
	if len(input.AdditionalServiceIDs) == 0 {
		return nil, ErrNoAdditionalServices
	}

	startDate, err := domain.ParseDate(input.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: subscription_start_date", ErrInvalidDateFormat)
	}
	endDate, err := domain.ParseDate(input.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: subscription_end_date", ErrInvalidDateFormat)
	}

	car, err := s.cars.GetCar(ctx, input.CarID)
	if err != nil {
		return nil, err
	}
	if car.IsRented {
		return nil, fmt.Errorf("%w: car %d", ErrCarAlreadyRented, input.CarID)
	}

	// Reject unknown add-on ids before touching remote state. Fail-fast on
	// the first miss.
	for _, id := range input.AdditionalServiceIDs {
		if _, err := s.addons.GetByID(ctx, id); err != nil {
			if errors.Is(err, addons.ErrNotFound) {
				return nil, fmt.Errorf("additional service %d: %w", id, addons.ErrNotFound)
			}
			return nil, fmt.Errorf("resolve additional service %d: %w", id, err)
		}
	}

	// Mark the car rented before persisting. If this call fails the
	// subscription must not exist; if the insert below fails the car stays
	// rented (no compensating call, matching the upstream contract).
	if err := s.cars.UpdateStatus(ctx, input.CarID); err != nil {
		return nil, fmt.Errorf("mark car %d rented: %w", input.CarID, err)
	}

	sub := &domain.Subscription{
		CustomerID:           customerID,
		CarID:                input.CarID,
		AdditionalServiceIDs: input.AdditionalServiceIDs,
		StartDate:            startDate,
		EndDate:              endDate,
		IsActive:             true,
	}
	if input.Status != nil {
		sub.IsActive = *input.Status
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("persist subscription: %w", err)
	}

	return sub, nil
}

// ListByCustomer returns the customer's subscriptions enriched with live car
// data, resolved add-ons, the derived total price, and the customer's name.
// Returns ErrNotFound when the customer has no subscriptions. The profile
// lookup is mandatory: its failure aborts the whole request.
func (s *Service) ListByCustomer(ctx context.Context, customerID int64, bearerToken string) ([]domain.EnrichedSubscription, error) {
	subs, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions for customer %d: %w", customerID, err)
	}
	if len(subs) == 0 {
		return nil, ErrNotFound
	}

	profile, err := s.customers.GetProfile(ctx, bearerToken)
	if err != nil {
		return nil, err
	}

	return s.enrich(ctx, subs, profile)
}

// ListAll returns every subscription enriched with live car data and derived
// pricing. No customer profile is attached. Returns ErrNotFound when the
// table is empty.
func (s *Service) ListAll(ctx context.Context) ([]domain.EnrichedSubscription, error) {
	subs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil, ErrNotFound
	}

	return s.enrich(ctx, subs, nil)
}

// Cancel flips the subscription to inactive and asks the car service to mark
// the car available again. The remote call is best-effort: its failure is
// logged but never blocks the local cancellation.
func (s *Service) Cancel(ctx context.Context, id int64) (*domain.Subscription, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cars.UpdateStatus(ctx, sub.CarID); err != nil {
		ctxlog.FromContext(ctx).Warn("failed to mark car available on cancellation",
			"subscription_id", sub.ID,
			"car_id", sub.CarID,
			"error", err,
		)
	}

	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return nil, fmt.Errorf("cancel subscription %d: %w", id, err)
	}

	sub.IsActive = false
	return sub, nil
}

// enrich combines stored rows with live car data and registry lookups. The
// car lookup degrades to sentinel values on failure; unknown add-on ids are
// silently skipped and do not contribute to the total.
func (s *Service) enrich(ctx context.Context, subs []domain.Subscription, profile *domain.CustomerProfile) ([]domain.EnrichedSubscription, error) {
	result := make([]domain.EnrichedSubscription, 0, len(subs))

	for _, sub := range subs {
		details := domain.UnknownCar
		car, err := s.cars.GetCar(ctx, sub.CarID)
		if err != nil {
			ctxlog.FromContext(ctx).Warn("car lookup failed, degrading to fallback values",
				"subscription_id", sub.ID,
				"car_id", sub.CarID,
				"error", err,
			)
		} else {
			details = domain.CarDetails{
				Price:      car.Price,
				Brand:      car.Brand,
				Model:      car.Model,
				EngineType: car.EngineType,
			}
		}

		resolved := make([]domain.AdditionalService, 0, len(sub.AdditionalServiceIDs))
		totalPrice := details.Price
		for _, addonID := range sub.AdditionalServiceIDs {
			addon, err := s.addons.GetByID(ctx, addonID)
			if err != nil {
				if errors.Is(err, addons.ErrNotFound) {
					continue
				}
				return nil, fmt.Errorf("resolve additional service %d: %w", addonID, err)
			}
			resolved = append(resolved, *addon)
			totalPrice += addon.Price
		}

		enriched := domain.EnrichedSubscription{
			Subscription:       sub,
			CarPrice:           details.Price,
			CarBrand:           details.Brand,
			CarModel:           details.Model,
			EngineType:         details.EngineType,
			AdditionalServices: resolved,
			TotalPrice:         totalPrice,
		}
		if profile != nil {
			enriched.FirstName = profile.FirstName
			enriched.LastName = profile.LastName
		}

		result = append(result, enriched)
	}

	return result, nil
}
