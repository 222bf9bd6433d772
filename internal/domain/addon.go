package domain

import "time"

// AdditionalService is a named, priced add-on a customer can attach to a
// subscription. Immutable after creation.
type AdditionalService struct {
	ID          int64     `json:"id"`
	ServiceName string    `json:"service_name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
