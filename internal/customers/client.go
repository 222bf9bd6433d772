// Package customers provides the HTTP client for the external customer
// profile service.
package customers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/openfleet/subscription-service/internal/domain"
	"github.com/openfleet/subscription-service/internal/pkg/metrics"
)

const defaultTimeout = 10 * time.Second

// ErrUnavailable is returned when the customer service is unreachable or
// returns a non-success status.
var ErrUnavailable = errors.New("customer service unavailable")

// Config holds customer service client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the customer profile service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a customer service client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// GetProfile fetches the authenticated customer's profile. The caller's
// bearer token is forwarded as-is; the customer service resolves identity
// from it.
func (c *Client) GetProfile(ctx context.Context, bearerToken string) (*domain.CustomerProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	req.Header.Set("X-Request-ID", requestID(ctx))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start).Seconds()

	if err != nil {
		metrics.ClientRequestDuration.WithLabelValues("customers", "get_profile", "error").Observe(duration)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.ClientRequestDuration.WithLabelValues(
		"customers", "get_profile", strconv.Itoa(resp.StatusCode),
	).Observe(duration)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var profile domain.CustomerProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: decode profile: %v", ErrUnavailable, err)
	}

	return &profile, nil
}

// requestID forwards the inbound request id when present, otherwise mints one.
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
