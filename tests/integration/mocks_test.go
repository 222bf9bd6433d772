//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// carRecord is the state the mock inventory keeps per car.
type carRecord struct {
	ID         int64   `json:"id"`
	Price      float64 `json:"price"`
	Brand      string  `json:"car_brand"`
	Model      string  `json:"car_model"`
	EngineType string  `json:"engine_type"`
	IsRented   bool    `json:"is_rented"`
}

// MockCarService is a fake car inventory HTTP service. It serves
// GET /car/{id} and PUT /update-status/{id}, the two endpoints the
// application depends on.
type MockCarService struct {
	mu          sync.Mutex
	server      *httptest.Server
	cars        map[int64]*carRecord
	failLookups bool
	failUpdates bool
	statusCalls []int64
}

// NewMockCarService starts the fake inventory.
func NewMockCarService() *MockCarService {
	m := &MockCarService{cars: make(map[int64]*carRecord)}

	mux := http.NewServeMux()
	mux.HandleFunc("/car/", m.handleGetCar)
	mux.HandleFunc("/update-status/", m.handleUpdateStatus)

	m.server = httptest.NewServer(mux)
	return m
}

// URL returns the base URL of the fake service.
func (m *MockCarService) URL() string {
	return m.server.URL
}

// Close shuts the fake service down.
func (m *MockCarService) Close() {
	m.server.Close()
}

// AddCar registers a car in the fake inventory.
func (m *MockCarService) AddCar(id int64, price float64, rented bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cars[id] = &carRecord{
		ID:         id,
		Price:      price,
		Brand:      "Volvo",
		Model:      "XC60",
		EngineType: "hybrid",
		IsRented:   rented,
	}
}

// SetFailLookups makes GET /car/{id} return 500 when enabled.
func (m *MockCarService) SetFailLookups(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLookups = fail
}

// SetFailUpdates makes PUT /update-status/{id} return 500 when enabled.
func (m *MockCarService) SetFailUpdates(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failUpdates = fail
}

// StatusCalls returns the car ids for which a status update was received.
func (m *MockCarService) StatusCalls() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]int64, len(m.statusCalls))
	copy(result, m.statusCalls)
	return result
}

// Reset clears all cars, recorded calls, and failure toggles.
func (m *MockCarService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cars = make(map[int64]*carRecord)
	m.statusCalls = nil
	m.failLookups = false
	m.failUpdates = false
}

func (m *MockCarService) handleGetCar(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failLookups {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/car/"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	car, ok := m.cars[id]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(car)
}

func (m *MockCarService) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failUpdates {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/update-status/"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if car, ok := m.cars[id]; ok {
		car.IsRented = !car.IsRented
	}
	m.statusCalls = append(m.statusCalls, id)

	w.WriteHeader(http.StatusOK)
}

// MockCustomerService is a fake customer profile HTTP service serving
// GET /user. It records the bearer tokens it receives so tests can assert
// the caller's token is forwarded.
type MockCustomerService struct {
	mu         sync.Mutex
	server     *httptest.Server
	firstName  string
	lastName   string
	fail       bool
	seenTokens []string
}

// NewMockCustomerService starts the fake profile service.
func NewMockCustomerService() *MockCustomerService {
	m := &MockCustomerService{
		firstName: "Kari",
		lastName:  "Nordmann",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/user", m.handleGetUser)

	m.server = httptest.NewServer(mux)
	return m
}

// URL returns the base URL of the fake service.
func (m *MockCustomerService) URL() string {
	return m.server.URL
}

// Close shuts the fake service down.
func (m *MockCustomerService) Close() {
	m.server.Close()
}

// SetFail makes GET /user return 500 when enabled.
func (m *MockCustomerService) SetFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

// SeenTokens returns the bearer tokens received so far.
func (m *MockCustomerService) SeenTokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.seenTokens))
	copy(result, m.seenTokens)
	return result
}

// Reset clears recorded tokens and the failure toggle.
func (m *MockCustomerService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seenTokens = nil
	m.fail = false
}

func (m *MockCustomerService) handleGetUser(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	m.seenTokens = append(m.seenTokens, token)

	if m.fail {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"first_name": m.firstName,
		"last_name":  m.lastName,
	})
}
