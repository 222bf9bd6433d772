//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/openfleet/subscription-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type subscriptionPayload struct {
	ID                   int64          `json:"id"`
	CustomerID           int64          `json:"customer_id"`
	CarID                int64          `json:"car_id"`
	AdditionalServiceIDs []int64        `json:"additional_service_ids"`
	StartDate            string         `json:"subscription_start_date"`
	EndDate              string         `json:"subscription_end_date"`
	IsActive             bool           `json:"subscription_status"`
	FirstName            string         `json:"first_name"`
	LastName             string         `json:"last_name"`
	CarPrice             float64        `json:"car_price"`
	CarBrand             string         `json:"car_brand"`
	CarModel             string         `json:"car_model"`
	EngineType           string         `json:"engine_type"`
	TotalPrice           float64        `json:"total_price"`
	AdditionalServices   []addonSummary `json:"additional_services"`
}

type addonSummary struct {
	ID          int64   `json:"id"`
	ServiceName string  `json:"service_name"`
	Price       float64 `json:"price"`
}

type subscriptionEnvelope struct {
	Data subscriptionPayload `json:"data"`
}

type listEnvelope struct {
	Data struct {
		Subscriptions []subscriptionPayload `json:"subscriptions"`
	} `json:"data"`
}

func TestCreateSubscription(t *testing.T) {
	resetState(t)
	client := newTestClient(t)
	client.SetToken(mintToken(t, 42))

	mockCars.AddCar(1, 100, false)
	insurance := createAdditionalService(t, client, "Insurance", 10)
	washing := createAdditionalService(t, client, "Washing", 5)

	resp, err := client.POST("/create", map[string]interface{}{
		"car_id":                  1,
		"additional_service_ids":  []int64{insurance, washing},
		"subscription_start_date": "2026-01-01",
		"subscription_end_date":   "2026-06-30",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result subscriptionEnvelope
	testutil.DecodeJSON(t, resp, &result)

	assert.NotZero(t, result.Data.ID)
	assert.Equal(t, int64(42), result.Data.CustomerID)
	assert.Equal(t, int64(1), result.Data.CarID)
	assert.Equal(t, []int64{insurance, washing}, result.Data.AdditionalServiceIDs)
	assert.Equal(t, "2026-01-01", result.Data.StartDate)
	assert.Equal(t, "2026-06-30", result.Data.EndDate)
	assert.True(t, result.Data.IsActive)

	assert.Equal(t, []int64{1}, mockCars.StatusCalls())
}

func TestCreateSubscription_Unauthorized(t *testing.T) {
	resetState(t)
	client := newTestClientWithoutValidation()

	resp, err := client.POST("/create", map[string]interface{}{
		"car_id":                  1,
		"additional_service_ids":  []int64{1},
		"subscription_start_date": "2026-01-01",
		"subscription_end_date":   "2026-06-30",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()

	client.SetToken("not-a-token")
	resp, err = client.POST("/create", map[string]interface{}{
		"car_id":                  1,
		"additional_service_ids":  []int64{1},
		"subscription_start_date": "2026-01-01",
		"subscription_end_date":   "2026-06-30",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCreateSubscription_CarAlreadyRented(t *testing.T) {
	resetState(t)
	client := newTestClient(t)
	client.SetToken(mintToken(t, 42))

	mockCars.AddCar(1, 100, true)
	insurance := createAdditionalService(t, client, "Insurance", 10)

	resp, err := client.POST("/create", map[string]interface{}{
		"car_id":                  1,
		"additional_service_ids":  []int64{insurance},
		"subscription_start_date": "2026-01-01",
		"subscription_end_date":   "2026-06-30",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	assert.Empty(t, mockCars.StatusCalls(), "conflict must not touch remote state")
	assertSubscriptionCount(t, 0)
}

func TestCreateSubscription_UnknownCar(t *testing.T) {
	resetState(t)
	client := newTestClient(t)
	client.SetToken(mintToken(t, 42))

	insurance := createAdditionalService(t, client, "Insurance", 10)

	resp, err := client.POST("/create", map[string]interface{}{
		"car_id":                  999,
		"additional_service_ids":  []int64{insurance},
		"subscription_start_date": "2026-01-01",
		"subscription_end_date":   "2026-06-30",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCreateSubscription_UnknownAdditionalService(t *testing.T) {
	resetState(t)
	client := newTestClient(t)
	client.SetToken(mintToken(t, 42))

	mockCars.AddCar(1, 100, false)
	insurance := createAdditionalService(t, client, "Insurance", 10)

	resp, err := client.POST("/create", map[string]interface{}{
		"car_id":                  1,
		"additional_service_ids":  []int64{insurance, 9999},
		"subscription_start_date": "2026-01-01",
		"subscription_end_date":   "2026-06-30",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	assert.Empty(t, mockCars.StatusCalls(), "unknown add-on must fail before the status call")
	assertSubscriptionCount(t, 0)
}

func TestCreateSubscription_Validation(t *testing.T) {
	resetState(t)
	client := newTestClientWithoutValidation()
	client.SetToken(mintToken(t, 42))

	mockCars.AddCar(1, 100, false)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{
			name: "empty additional services",
			body: map[string]interface{}{
				"car_id":                  1,
				"additional_service_ids":  []int64{},
				"subscription_start_date": "2026-01-01",
				"subscription_end_date":   "2026-06-30",
			},
		},
		{
			name: "missing car id",
			body: map[string]interface{}{
				"additional_service_ids":  []int64{1},
				"subscription_start_date": "2026-01-01",
				"subscription_end_date":   "2026-06-30",
			},
		},
		{
			name: "malformed start date",
			body: map[string]interface{}{
				"car_id":                  1,
				"additional_service_ids":  []int64{1},
				"subscription_start_date": "01.01.2026",
				"subscription_end_date":   "2026-06-30",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := client.POST("/create", tc.body)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			_ = resp.Body.Close()
		})
	}
}

func TestCreateSubscription_CarStatusUpdateFails(t *testing.T) {
	resetState(t)
	client := newTestClientWithoutValidation()
	client.SetToken(mintToken(t, 42))

	validated := newTestClient(t)
	mockCars.AddCar(1, 100, false)
	insurance := createAdditionalService(t, validated, "Insurance", 10)

	mockCars.SetFailUpdates(true)

	resp, err := client.POST("/create", map[string]interface{}{
		"car_id":                  1,
		"additional_service_ids":  []int64{insurance},
		"subscription_start_date": "2026-01-01",
		"subscription_end_date":   "2026-06-30",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	_ = resp.Body.Close()

	assertSubscriptionCount(t, 0)
}

func TestFetchSubscriptions(t *testing.T) {
	resetState(t)
	client := newTestClient(t)
	client.SetToken(mintToken(t, 42))

	mockCars.AddCar(1, 100, false)
	insurance := createAdditionalService(t, client, "Insurance", 10)
	washing := createAdditionalService(t, client, "Washing", 5)
	createSubscription(t, client, 1, []int64{insurance, washing})

	resp, err := client.GET("/fetch")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result listEnvelope
	testutil.DecodeJSON(t, resp, &result)
	require.Len(t, result.Data.Subscriptions, 1)

	got := result.Data.Subscriptions[0]
	assert.Equal(t, "Kari", got.FirstName)
	assert.Equal(t, "Nordmann", got.LastName)
	assert.Equal(t, 100.0, got.CarPrice)
	assert.Equal(t, "Volvo", got.CarBrand)
	assert.Equal(t, "XC60", got.CarModel)
	assert.Equal(t, "hybrid", got.EngineType)
	assert.Equal(t, []int64{insurance, washing}, got.AdditionalServiceIDs)
	assert.Len(t, got.AdditionalServices, 2)
	assert.Equal(t, 115.0, got.TotalPrice)
}

func TestFetchSubscriptions_OnlyOwnRows(t *testing.T) {
	resetState(t)
	owner := newTestClient(t)
	owner.SetToken(mintToken(t, 42))

	mockCars.AddCar(1, 100, false)
	mockCars.AddCar(2, 150, false)
	insurance := createAdditionalService(t, owner, "Insurance", 10)
	createSubscription(t, owner, 1, []int64{insurance})

	other := newTestClient(t)
	other.SetToken(mintToken(t, 77))
	createSubscription(t, other, 2, []int64{insurance})

	resp, err := owner.GET("/fetch")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result listEnvelope
	testutil.DecodeJSON(t, resp, &result)
	require.Len(t, result.Data.Subscriptions, 1)
	assert.Equal(t, int64(42), result.Data.Subscriptions[0].CustomerID)
}

func TestFetchSubscriptions_Empty(t *testing.T) {
	resetState(t)
	client := newTestClient(t)
	client.SetToken(mintToken(t, 42))

	resp, err := client.GET("/fetch")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestFetchSubscriptions_ForwardsBearerToken(t *testing.T) {
	resetState(t)
	client := newTestClient(t)
	token := mintToken(t, 42)
	client.SetToken(token)

	mockCars.AddCar(1, 100, false)
	insurance := createAdditionalService(t, client, "Insurance", 10)
	createSubscription(t, client, 1, []int64{insurance})

	resp, err := client.GET("/fetch")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	seen := mockCustomers.SeenTokens()
	require.NotEmpty(t, seen)
	assert.Equal(t, token, seen[len(seen)-1])
}

func TestFetchSubscriptions_CustomerServiceDown(t *testing.T) {
	resetState(t)
	client := newTestClientWithoutValidation()
	client.SetToken(mintToken(t, 42))

	validated := newTestClient(t)
	validated.SetToken(client.Token)
	mockCars.AddCar(1, 100, false)
	insurance := createAdditionalService(t, validated, "Insurance", 10)
	createSubscription(t, validated, 1, []int64{insurance})

	mockCustomers.SetFail(true)

	resp, err := client.GET("/fetch")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestFetchSubscriptions_CarLookupDegrades(t *testing.T) {
	resetState(t)
	client := newTestClient(t)
	client.SetToken(mintToken(t, 42))

	mockCars.AddCar(1, 100, false)
	insurance := createAdditionalService(t, client, "Insurance", 10)
	washing := createAdditionalService(t, client, "Washing", 5)
	createSubscription(t, client, 1, []int64{insurance, washing})

	mockCars.SetFailLookups(true)

	resp, err := client.GET("/fetch")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, "car outage must not break the listing")

	var result listEnvelope
	testutil.DecodeJSON(t, resp, &result)
	require.Len(t, result.Data.Subscriptions, 1)

	got := result.Data.Subscriptions[0]
	assert.Equal(t, 0.0, got.CarPrice)
	assert.Equal(t, "Unknown", got.CarBrand)
	assert.Equal(t, "Unknown", got.CarModel)
	assert.Equal(t, "Unknown", got.EngineType)
	assert.Equal(t, 15.0, got.TotalPrice)
}

func TestGetAllSubscriptions(t *testing.T) {
	resetState(t)
	client := newTestClient(t)
	client.SetToken(mintToken(t, 42))

	mockCars.AddCar(1, 100, false)
	mockCars.AddCar(2, 150, false)
	insurance := createAdditionalService(t, client, "Insurance", 10)
	createSubscription(t, client, 1, []int64{insurance})

	other := newTestClient(t)
	other.SetToken(mintToken(t, 77))
	createSubscription(t, other, 2, []int64{insurance})

	// No token required.
	anon := newTestClient(t)
	resp, err := anon.GET("/getall_subscriptions")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result listEnvelope
	testutil.DecodeJSON(t, resp, &result)
	require.Len(t, result.Data.Subscriptions, 2)

	for _, sub := range result.Data.Subscriptions {
		assert.Empty(t, sub.FirstName)
		assert.Empty(t, sub.LastName)
	}
	assert.Equal(t, 110.0, result.Data.Subscriptions[0].TotalPrice)
	assert.Equal(t, 160.0, result.Data.Subscriptions[1].TotalPrice)
}

func TestGetAllSubscriptions_Empty(t *testing.T) {
	resetState(t)
	client := newTestClient(t)

	resp, err := client.GET("/getall_subscriptions")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCancelSubscription(t *testing.T) {
	resetState(t)
	client := newTestClient(t)
	client.SetToken(mintToken(t, 42))

	mockCars.AddCar(1, 100, false)
	insurance := createAdditionalService(t, client, "Insurance", 10)
	id := createSubscription(t, client, 1, []int64{insurance})

	resp, err := client.PATCH(fmt.Sprintf("/cancel_subscription/%d", id), nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result subscriptionEnvelope
	testutil.DecodeJSON(t, resp, &result)
	assert.False(t, result.Data.IsActive)

	// Mark rented at creation plus mark available at cancellation.
	assert.Equal(t, []int64{1, 1}, mockCars.StatusCalls())
}

func TestCancelSubscription_NotFound(t *testing.T) {
	resetState(t)
	client := newTestClient(t)

	resp, err := client.PATCH("/cancel_subscription/9999", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCancelSubscription_BadID(t *testing.T) {
	resetState(t)
	client := newTestClientWithoutValidation()

	resp, err := client.PATCH("/cancel_subscription/abc", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCancelSubscription_CarServiceDown(t *testing.T) {
	resetState(t)
	client := newTestClient(t)
	client.SetToken(mintToken(t, 42))

	mockCars.AddCar(1, 100, false)
	insurance := createAdditionalService(t, client, "Insurance", 10)
	id := createSubscription(t, client, 1, []int64{insurance})

	mockCars.SetFailUpdates(true)

	resp, err := client.PATCH(fmt.Sprintf("/cancel_subscription/%d", id), nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, "cancellation is local-first")

	var result subscriptionEnvelope
	testutil.DecodeJSON(t, resp, &result)
	assert.False(t, result.Data.IsActive)
}

func TestCancelSubscription_Idempotent(t *testing.T) {
	resetState(t)
	client := newTestClient(t)
	client.SetToken(mintToken(t, 42))

	mockCars.AddCar(1, 100, false)
	insurance := createAdditionalService(t, client, "Insurance", 10)
	id := createSubscription(t, client, 1, []int64{insurance})

	for i := 0; i < 2; i++ {
		resp, err := client.PATCH(fmt.Sprintf("/cancel_subscription/%d", id), nil)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result subscriptionEnvelope
		testutil.DecodeJSON(t, resp, &result)
		assert.False(t, result.Data.IsActive)
	}
}

func assertSubscriptionCount(t *testing.T, want int) {
	t.Helper()

	var count int
	err := testDB.QueryRow(t.Context(), "SELECT COUNT(*) FROM subscriptions").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, want, count)
}
