// Package postgres provides the PostgreSQL implementation of the addons
// repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openfleet/subscription-service/internal/addons"
	"github.com/openfleet/subscription-service/internal/domain"
)

// Repository implements the addons.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new additional service.
func (r *Repository) Create(ctx context.Context, addon *domain.AdditionalService) error {
	query := `
		INSERT INTO additional_services (service_name, price, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		addon.ServiceName,
		addon.Price,
		addon.Description,
	).Scan(&addon.ID, &addon.CreatedAt)

	if err != nil {
		return fmt.Errorf("create additional service: %w", err)
	}
	return nil
}

// GetByID retrieves an additional service by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.AdditionalService, error) {
	query := `
		SELECT id, service_name, price, description, created_at
		FROM additional_services
		WHERE id = $1
	`
	var addon domain.AdditionalService
	var description *string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&addon.ID,
		&addon.ServiceName,
		&addon.Price,
		&description,
		&addon.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, addons.ErrNotFound
		}
		return nil, fmt.Errorf("get additional service by id: %w", err)
	}

	if description != nil {
		addon.Description = *description
	}

	return &addon, nil
}
