// Package postgres provides the PostgreSQL implementation of the
// subscriptions repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openfleet/subscription-service/internal/domain"
	"github.com/openfleet/subscription-service/internal/subscriptions"
)

// Repository implements the subscriptions.Repository interface using
// PostgreSQL. Add-on ids live in a BIGINT[] column so their order survives
// the round trip.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new subscription row.
func (r *Repository) Create(ctx context.Context, sub *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (customer_id, car_id, additional_service_ids, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		sub.CustomerID,
		sub.CarID,
		sub.AdditionalServiceIDs,
		sub.StartDate.Time,
		sub.EndDate.Time,
		sub.IsActive,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

// GetByID retrieves a subscription by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Subscription, error) {
	query := `
		SELECT id, customer_id, car_id, additional_service_ids, start_date, end_date, is_active, created_at, updated_at
		FROM subscriptions
		WHERE id = $1
	`
	sub, err := scanSubscription(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, subscriptions.ErrNotFound
		}
		return nil, fmt.Errorf("get subscription by id: %w", err)
	}
	return sub, nil
}

// ListByCustomer retrieves all subscriptions owned by the customer, in
// natural row order.
func (r *Repository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Subscription, error) {
	query := `
		SELECT id, customer_id, car_id, additional_service_ids, start_date, end_date, is_active, created_at, updated_at
		FROM subscriptions
		WHERE customer_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions by customer: %w", err)
	}
	defer rows.Close()

	return collectSubscriptions(rows)
}

// ListAll retrieves every subscription in natural row order.
func (r *Repository) ListAll(ctx context.Context) ([]domain.Subscription, error) {
	query := `
		SELECT id, customer_id, car_id, additional_service_ids, start_date, end_date, is_active, created_at, updated_at
		FROM subscriptions
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	return collectSubscriptions(rows)
}

// SetActive updates the subscription's active flag.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `
		UPDATE subscriptions
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("set subscription active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return subscriptions.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := row.Scan(
		&sub.ID,
		&sub.CustomerID,
		&sub.CarID,
		&sub.AdditionalServiceIDs,
		&sub.StartDate.Time,
		&sub.EndDate.Time,
		&sub.IsActive,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func collectSubscriptions(rows pgx.Rows) ([]domain.Subscription, error) {
	subs := make([]domain.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return subs, nil
}
