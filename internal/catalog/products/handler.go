package products

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stockpilot/stockpilot/internal/platform/httpx"
)

// Handler serves catalog mutations for products. Product reads with stock
// projections live in the stock package.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes attaches product catalog routes under /products.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

// CreateProductRequest is the POST /products payload.
type CreateProductRequest struct {
	SKU              string    `json:"sku" validate:"required,max=100"`
	Name             string    `json:"name" validate:"required,max=255"`
	Description      string    `json:"description,omitempty"`
	ReorderThreshold int64     `json:"reorderThreshold" validate:"gte=0"`
	ReorderQuantity  int64     `json:"reorderQuantity" validate:"gte=0"`
	SupplierID       uuid.UUID `json:"supplierId" validate:"required"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), Product{
		SKU:              req.SKU,
		Name:             req.Name,
		Description:      req.Description,
		ReorderThreshold: req.ReorderThreshold,
		ReorderQuantity:  req.ReorderQuantity,
		SupplierID:       req.SupplierID,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, created)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]bool{"success": true})
}
