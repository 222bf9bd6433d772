package addons

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/openfleet/subscription-service/internal/domain"
	"github.com/openfleet/subscription-service/internal/pkg/httputil"
)

// Handler handles HTTP requests for the additional-service registry.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new registry handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers the registry routes. None require authentication.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/additional_services", h.Create)
	r.Get("/additional_services/{id}", h.GetByID)
}

// CreateRequest represents the request body for registering an additional
// service. All three fields are required; a zero price is still a price,
// hence the pointer.
type CreateRequest struct {
	ServiceName string   `json:"service_name" validate:"required,min=1,max=255"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Description string   `json:"description" validate:"required"`
}

// ToDomain converts the request to a domain model.
func (r *CreateRequest) ToDomain() *domain.AdditionalService {
	return &domain.AdditionalService{
		ServiceName: r.ServiceName,
		Price:       *r.Price,
		Description: r.Description,
	}
}

// Create handles POST /additional_services.
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

	addon := req.ToDomain()
	if err := h.service.Create(r.Context(), addon); err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.Success(w, http.StatusCreated, addon)
}

// GetByID handles GET /additional_services/{id}.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	addon, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrNotFound, Status: http.StatusNotFound},
		})
		return
	}

	httputil.Success(w, http.StatusOK, addon)
}
