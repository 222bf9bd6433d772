//go:build integration

package integration

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/openfleet/subscription-service/internal/testutil"
	"github.com/stretchr/testify/require"
)

// mintToken issues a signed bearer token for the given customer id.
func mintToken(t *testing.T, customerID int64) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatInt(customerID, 10),
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	})

	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

// createAdditionalService registers an add-on and returns its id.
func createAdditionalService(t *testing.T, client *testutil.Client, name string, price float64) int64 {
	t.Helper()

	resp, err := client.POST("/additional_services", map[string]interface{}{
		"service_name": name,
		"price":        price,
		"description":  name + " description",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data.ID
}

// createSubscription creates a subscription for the client's current token and
// returns its id.
func createSubscription(t *testing.T, client *testutil.Client, carID int64, addonIDs []int64) int64 {
	t.Helper()

	resp, err := client.POST("/create", map[string]interface{}{
		"car_id":                  carID,
		"additional_service_ids":  addonIDs,
		"subscription_start_date": "2026-01-01",
		"subscription_end_date":   "2026-06-30",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data.ID
}
