package subscriptions

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/openfleet/subscription-service/internal/addons"
	"github.com/openfleet/subscription-service/internal/cars"
	"github.com/openfleet/subscription-service/internal/customers"
	"github.com/openfleet/subscription-service/internal/pkg/httputil"
)

// Handler handles HTTP requests for subscriptions.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new subscription handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterProtectedRoutes registers routes that require a verified bearer
// token: creation and the identity-scoped listing.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/create", h.Create)
	r.Get("/fetch", h.Fetch)
}

// RegisterPublicRoutes registers routes without authentication.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/getall_subscriptions", h.ListAll)
	r.Patch("/cancel_subscription/{id}", h.Cancel)
}

// CreateRequest represents the request body for creating a subscription.
// customer_id is never accepted from the body; it comes from the token.
type CreateRequest struct {
	CarID                int64   `json:"car_id" validate:"required,gt=0"`
	AdditionalServiceIDs []int64 `json:"additional_service_ids" validate:"required,min=1,dive,gt=0"`
	StartDate            string  `json:"subscription_start_date" validate:"required,datetime=2006-01-02"`
	EndDate              string  `json:"subscription_end_date" validate:"required,datetime=2006-01-02"`
	Status               *bool   `json:"subscription_status"`
}

// ToInput converts the request to a service input.
func (r *CreateRequest) ToInput() CreateInput {
	return CreateInput{
		CarID:                r.CarID,
		AdditionalServiceIDs: r.AdditionalServiceIDs,
		StartDate:            r.StartDate,
		EndDate:              r.EndDate,
		Status:               r.Status,
	}
}

// Create handles POST /create.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	customerID := httputil.GetCustomerID(r.Context())

	sub, err := h.service.Create(r.Context(), customerID, req.ToInput())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrInvalidDateFormat, Status: http.StatusBadRequest},
			{Error: ErrNoAdditionalServices, Status: http.StatusBadRequest},
			{Error: ErrCarAlreadyRented, Status: http.StatusBadRequest},
			{Error: cars.ErrCarNotFound, Status: http.StatusNotFound},
			{Error: addons.ErrNotFound, Status: http.StatusNotFound},
			{Error: cars.ErrUnavailable, Status: http.StatusInternalServerError},
		})
		return
	}

	httputil.Success(w, http.StatusCreated, sub)
}

// Fetch handles GET /fetch: the authenticated customer's subscriptions,
// enriched.
func (h *Handler) Fetch(w http.ResponseWriter, r *http.Request) {
	customerID := httputil.GetCustomerID(r.Context())
	bearerToken := httputil.GetBearerToken(r.Context())

	result, err := h.service.ListByCustomer(r.Context(), customerID, bearerToken)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrNotFound, Status: http.StatusNotFound},
			{Error: customers.ErrUnavailable, Status: http.StatusInternalServerError},
		})
		return
	}

	httputil.Success(w, http.StatusOK, map[string]interface{}{"subscriptions": result})
}

// ListAll handles GET /getall_subscriptions.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListAll(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrNotFound, Status: http.StatusNotFound},
		})
		return
	}

	httputil.Success(w, http.StatusOK, map[string]interface{}{"subscriptions": result})
}

// Cancel handles PATCH /cancel_subscription/{id}.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	sub, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrNotFound, Status: http.StatusNotFound},
		})
		return
	}

	httputil.Success(w, http.StatusOK, sub)
}
