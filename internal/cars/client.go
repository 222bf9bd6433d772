// Package cars provides the HTTP client for the external car inventory
// service.
package cars

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/openfleet/subscription-service/internal/pkg/metrics"
	"golang.org/x/time/rate"
)

const defaultTimeout = 10 * time.Second

// Client errors.
var (
	// ErrCarNotFound is returned when the car service reports no such car.
	// Any non-200 on lookup means not-found per the car service contract.
	ErrCarNotFound = errors.New("car not found")
	// ErrUnavailable is returned when the car service is unreachable or
	// rejects a state change.
	ErrUnavailable = errors.New("car service unavailable")
)

// Config holds car service client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit caps outbound requests per second; 0 disables the limiter.
	RateLimit float64
}

// Client calls the car inventory service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Car is the car service's record for a single car.
type Car struct {
	ID         int64   `json:"id"`
	Price      float64 `json:"price"`
	Brand      string  `json:"car_brand"`
	Model      string  `json:"car_model"`
	EngineType string  `json:"engine_type"`
	IsRented   bool    `json:"is_rented"`
}

// NewClient creates a car service client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: limiter,
	}
}

// GetCar fetches a car by id. Returns ErrCarNotFound when the service
// reports the car does not exist and ErrUnavailable on transport failure.
func (c *Client) GetCar(ctx context.Context, carID int64) (*Car, error) {
	url := fmt.Sprintf("%s/car/%d", c.baseURL, carID)

	resp, err := c.do(ctx, http.MethodGet, url, "get_car")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: id %d", ErrCarNotFound, carID)
	}

	var car Car
	if err := json.NewDecoder(resp.Body).Decode(&car); err != nil {
		return nil, fmt.Errorf("%w: decode car %d: %v", ErrUnavailable, carID, err)
	}

	return &car, nil
}

// UpdateStatus toggles a car between rented and available. The transition is
// held by the car service; the caller only signals the flip.
func (c *Client) UpdateStatus(ctx context.Context, carID int64) error {
	url := fmt.Sprintf("%s/update-status/%d", c.baseURL, carID)

	resp, err := c.do(ctx, http.MethodPut, url, "update_status")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: update status for car %d: status %d: %s",
			ErrUnavailable, carID, resp.StatusCode, string(body))
	}

	return nil
}

func (c *Client) do(ctx context.Context, method, url, operation string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Request-ID", requestID(ctx))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start).Seconds()

	if err != nil {
		metrics.ClientRequestDuration.WithLabelValues("cars", operation, "error").Observe(duration)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	metrics.ClientRequestDuration.WithLabelValues(
		"cars", operation, strconv.Itoa(resp.StatusCode),
	).Observe(duration)

	return resp, nil
}

// requestID forwards the inbound request id when present, otherwise mints one.
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
