// Package domain contains the core data types of the subscription service.
package domain

import "time"

// Subscription represents a customer's rental agreement for one car over a
// date range, with optional add-on services attached.
type Subscription struct {
	ID                   int64     `json:"id"`
	CustomerID           int64     `json:"customer_id"`
	CarID                int64     `json:"car_id"`
	AdditionalServiceIDs []int64   `json:"additional_service_ids"`
	StartDate            Date      `json:"subscription_start_date"`
	EndDate              Date      `json:"subscription_end_date"`
	IsActive             bool      `json:"subscription_status"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// CarDetails holds the car attributes merged into a subscription on read.
type CarDetails struct {
	Price      float64
	Brand      string
	Model      string
	EngineType string
}

// UnknownCar is the sentinel substituted when the car lookup fails on the
// read path.
var UnknownCar = CarDetails{
	Price:      0,
	Brand:      "Unknown",
	Model:      "Unknown",
	EngineType: "Unknown",
}

// EnrichedSubscription is the read model: a stored subscription combined with
// live car data, resolved add-on services, and the derived total price.
// First/last name are present only on identity-scoped listings.
type EnrichedSubscription struct {
	Subscription
	FirstName          string              `json:"first_name,omitempty"`
	LastName           string              `json:"last_name,omitempty"`
	CarPrice           float64             `json:"car_price"`
	CarBrand           string              `json:"car_brand"`
	CarModel           string              `json:"car_model"`
	EngineType         string              `json:"engine_type"`
	AdditionalServices []AdditionalService `json:"additional_services"`
	TotalPrice         float64             `json:"total_price"`
}

// CustomerProfile is the subset of the customer service's profile used when
// enriching identity-scoped listings.
type CustomerProfile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
